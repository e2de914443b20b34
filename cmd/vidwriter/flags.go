package main

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidwriter/pkg/config"
)

const (
	categoryOutput  = "Output"
	categoryWriter  = "Writer"
	categorySource  = "Source"
	categoryDebug   = "Debug"
	categoryLogging = "Logging"
)

// writerFlags are shared by every command that produces a video.
func writerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output file path; the extension selects the container"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T(categoryOutput)},

		&cli.Float64Flag{Name: "fps", Aliases: []string{"r"}, Usage: l10n.T("Frame rate (default: 25)"), Category: l10n.T(categoryWriter)},
		&cli.StringFlag{Name: "encoder", Aliases: []string{"e"}, Usage: l10n.T("Encoder name (default: chosen by the container)"), Category: l10n.T(categoryWriter)},
		&cli.StringFlag{Name: "options", Usage: l10n.T("Encoder options as key=value pairs"), Category: l10n.T(categoryWriter)},
		&cli.StringFlag{Name: "options-separator", Usage: l10n.T("Separator between option pairs (default: ,)"), Category: l10n.T(categoryWriter)},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: l10n.T("Quality preset (low, medium, high)"), Category: l10n.T(categoryWriter)},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: l10n.T("Force the container format by name"), Category: l10n.T(categoryWriter)},
		&cli.BoolFlag{Name: "grayscale", Usage: l10n.T("Feed single-channel gray input"), Category: l10n.T(categoryWriter)},
		&cli.BoolFlag{Name: "rgb", Usage: l10n.T("Feed RGB instead of BGR input"), Category: l10n.T(categoryWriter)},
		&cli.IntFlag{Name: "hold-frames", Usage: l10n.T("Repeat the last frame this many times"), Category: l10n.T(categoryWriter)},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Frame width"), Category: l10n.T(categoryWriter)},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Frame height"), Category: l10n.T(categoryWriter)},
		&cli.StringFlag{Name: "background", Usage: l10n.T("Background color (hex, e.g., #101010)"), Category: l10n.T(categoryWriter)},
		&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to the ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)"), EnvVars: []string{"FFMPEG_PATH"}, Category: l10n.T(categoryWriter)},

		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save the stream description and packets"), Category: l10n.T(categoryDebug)},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T(categoryDebug)},

		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(categoryLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(categoryLogging)},
	}
}

// sourceFlags configure the synthetic pattern.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "pattern", Usage: l10n.T("Test pattern (bars, gradient, solid)"), Category: l10n.T(categorySource)},
		&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Number of frames to generate"), Category: l10n.T(categorySource)},
		&cli.BoolFlag{Name: "no-label", Usage: l10n.T("Do not draw the frame number"), Category: l10n.T(categorySource)},
	}
}

// loadConfig reads the config file, if any, and applies the flags the user
// set on top of it.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}

	cfg.OutputPath = c.String("output")
	if c.IsSet("fps") {
		cfg.FPS = c.Float64("fps")
	}
	if c.IsSet("encoder") {
		cfg.Encoder = c.String("encoder")
	}
	if c.IsSet("options") {
		cfg.Options = c.String("options")
	}
	if c.IsSet("options-separator") {
		cfg.OptionsSeparator = c.String("options-separator")
	}
	if c.IsSet("preset") {
		cfg.Preset = config.Preset(c.String("preset"))
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("grayscale") {
		cfg.Grayscale = c.Bool("grayscale")
	}
	if c.IsSet("rgb") {
		cfg.RGB = c.Bool("rgb")
	}
	if c.IsSet("hold-frames") {
		cfg.HoldFrames = c.Int("hold-frames")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("background") {
		cfg.Background = c.String("background")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(c.String("log-level"))); err != nil {
			return cfg, err
		}
	}
	if c.IsSet("pattern") {
		cfg.Pattern = c.String("pattern")
	}
	if c.IsSet("frames") {
		cfg.Frames = c.Int("frames")
	}
	if c.IsSet("no-label") {
		cfg.Label = !c.Bool("no-label")
	}

	return cfg, cfg.Validate()
}
