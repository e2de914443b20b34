package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidwriter/pkg/adapters/ffmpegencoder"
	"github.com/user/vidwriter/pkg/adapters/filesink"
	"github.com/user/vidwriter/pkg/adapters/ggrenderer"
	"github.com/user/vidwriter/pkg/adapters/logger"
	"github.com/user/vidwriter/pkg/adapters/mp4probe"
	"github.com/user/vidwriter/pkg/adapters/nullsink"
	"github.com/user/vidwriter/pkg/adapters/osfilesystem"
	"github.com/user/vidwriter/pkg/avlog"
	"github.com/user/vidwriter/pkg/config"
	"github.com/user/vidwriter/pkg/formats"
	"github.com/user/vidwriter/pkg/orchestrator"
	"github.com/user/vidwriter/pkg/ports"
	"github.com/user/vidwriter/pkg/stages/encode"
	"github.com/user/vidwriter/pkg/stages/source"
	"github.com/user/vidwriter/pkg/summarizer"
	"github.com/user/vidwriter/pkg/videowriter"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     l10n.T("Encode image files into a video"),
		ArgsUsage: "IMAGE...",
		Flags:     writerFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit(l10n.T("at least one image is required"), 2)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			cfg.Inputs = c.Args().Slice()
			return run(c, cfg)
		},
	}
}

func testsrcCommand() *cli.Command {
	return &cli.Command{
		Name:  "testsrc",
		Usage: l10n.T("Encode a synthetic test pattern"),
		Flags: append(writerFlags(), sourceFlags()...),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			cfg.Inputs = nil
			return run(c, cfg)
		},
	}
}

// run wires the adapters, executes the pipeline and writes the optional
// summary.
func run(c *cli.Context, cfg config.Config) error {
	level := cfg.LogLevel
	if c.Bool("quiet") {
		level = ports.LevelQuiet
	}
	var log ports.Logger
	if level == ports.LevelQuiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(level)
	}
	// claim the one-time init before videowriter.New forces warn
	if !avlog.Init(level) {
		avlog.SetLevel(level)
	}

	if cfg.FFmpegPath != "" {
		ffmpegencoder.SetFFmpegPath(cfg.FFmpegPath)
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs)
	} else {
		sink = nullsink.New()
	}

	writer := videowriter.New(
		videowriter.WithLogger(log),
		videowriter.WithFileSystem(fs),
		videowriter.WithRegistry(formats.Default(renderer)),
		videowriter.WithDebugSink(sink),
	)

	orch := orchestrator.New(
		source.NewStage(fs, renderer, log, 0),
		encode.NewStage(writer, log),
		log,
	)

	started := time.Now()
	result, err := orch.Run(c.Context, cfg.ToOrchestratorConfig())
	if err != nil {
		return err
	}

	if path := c.String("summary"); path != "" {
		s := buildSummary(cfg, result, time.Since(started))
		if err := summarizer.NewWriter(summarizer.ForPath(path), fs).Write(path, s); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		log.Info(l10n.F("Summary saved to %s", path))
	}
	return nil
}

func buildSummary(cfg config.Config, r orchestrator.RunResult, elapsed time.Duration) *summarizer.Summary {
	src := l10n.F("%s pattern", cfg.Pattern)
	if len(cfg.Inputs) > 0 {
		src = l10n.F("%d images", len(cfg.Inputs))
	}
	var size int64
	if st, err := os.Stat(r.OutputPath); err == nil {
		size = st.Size()
	}
	return summarizer.NewBuilder().
		WithOutput(summarizer.OutputInfo{
			Path:     r.OutputPath,
			Format:   r.Format,
			Encoder:  r.Encoder,
			Codec:    r.Codec,
			FileSize: size,
		}).
		WithSettings(summarizer.Settings{
			Source:    src,
			Preset:    string(cfg.Preset),
			Options:   cfg.EffectiveOptions(),
			FPS:       cfg.FPS,
			Grayscale: cfg.Grayscale,
			RGB:       cfg.RGB,
		}).
		WithVideo(summarizer.VideoInfo{
			Width:      r.Width,
			Height:     r.Height,
			FrameRate:  r.FrameRate,
			TimeBase:   r.TimeBase,
			FrameCount: r.FrameCount,
			Packets:    r.Packets,
			Bytes:      r.Bytes,
			DurationMs: r.DurationMs,
		}).
		WithElapsed(elapsed).
		Build()
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Inspect the video track of an MP4 file"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: l10n.T("Print the result as JSON")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("exactly one file is required"), 2)
			}
			info, err := mp4probe.ProbeFile(c.Args().First())
			if err != nil {
				return err
			}
			out := c.App.Writer
			if c.Bool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\t%s\n", l10n.T("Codec"), info.Codec)
			fmt.Fprintf(tw, "%s\t%dx%d\n", l10n.T("Size"), info.Width, info.Height)
			fmt.Fprintf(tw, "%s\t%d\n", l10n.T("Timescale"), info.Timescale)
			fmt.Fprintf(tw, "%s\t%t (%d)\n", l10n.T("Fragmented"), info.Fragmented, info.Fragments)
			fmt.Fprintf(tw, "%s\t%d\n", l10n.T("Samples"), info.Samples)
			fmt.Fprintf(tw, "%s\t%d\n", l10n.T("Keyframes"), info.Keyframes)
			fmt.Fprintf(tw, "%s\t%.3fs\n", l10n.T("Start"), info.StartSeconds())
			fmt.Fprintf(tw, "%s\t%.3fs\n", l10n.T("Duration"), info.Duration)
			return tw.Flush()
		},
	}
}

func encodersCommand() *cli.Command {
	return &cli.Command{
		Name:  "encoders",
		Usage: l10n.T("List the available encoders"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to the ffmpeg executable"), EnvVars: []string{"FFMPEG_PATH"}},
		},
		Action: func(c *cli.Context) error {
			if p := c.String("ffmpeg"); p != "" {
				ffmpegencoder.SetFFmpegPath(p)
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l10n.T("NAME"), l10n.T("CODEC"), l10n.T("PIXEL FORMATS"), l10n.T("DESCRIPTION"))
			for _, codec := range formats.Default(ggrenderer.New()).Codecs() {
				pix := make([]string, len(codec.PixelFormats))
				for i, p := range codec.PixelFormats {
					pix[i] = p.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", codec.Name, codec.ID, strings.Join(pix, ","), codec.LongName)
			}
			if !ffmpegencoder.IsAvailable() {
				fmt.Fprintln(tw, l10n.T("(ffmpeg not found: libx264, libvpx, libvpx-vp9 and libaom-av1 are unavailable)"))
			}
			return tw.Flush()
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: l10n.T("List the available output formats"),
		Action: func(c *cli.Context) error {
			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l10n.T("NAME"), l10n.T("EXTENSIONS"), l10n.T("DEFAULT CODEC"), l10n.T("DESCRIPTION"))
			for _, f := range formats.Default(ggrenderer.New()).Formats() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, strings.Join(f.Extensions, ","), f.VideoCodec, f.LongName)
			}
			return tw.Flush()
		},
	}
}
