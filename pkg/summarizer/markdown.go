package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l10n.T("Encode Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", l10n.T("Generated"), s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Output"))
	table(&b, [][2]string{
		{l10n.T("File"), s.Output.Path},
		{l10n.T("Format"), s.Output.Format},
		{l10n.T("Encoder"), s.Output.Encoder},
		{l10n.T("Codec"), s.Output.Codec},
		{l10n.T("File Size"), formatBytes(s.Output.FileSize)},
	})

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Settings"))
	table(&b, [][2]string{
		{l10n.T("Source"), s.Settings.Source},
		{l10n.T("Frame Rate"), fmt.Sprintf("%g fps", s.Settings.FPS)},
		{l10n.T("Preset"), orDash(s.Settings.Preset)},
		{l10n.T("Options"), orDash(s.Settings.Options)},
		{l10n.T("Input Layout"), inputLayout(s.Settings)},
	})

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Video"))
	table(&b, [][2]string{
		{l10n.T("Size"), fmt.Sprintf("%dx%d", s.Video.Width, s.Video.Height)},
		{l10n.T("Stream Frame Rate"), s.Video.FrameRate},
		{l10n.T("Time Base"), s.Video.TimeBase},
		{l10n.T("Frames"), fmt.Sprintf("%d", s.Video.FrameCount)},
		{l10n.T("Packets"), fmt.Sprintf("%d", s.Video.Packets)},
		{l10n.T("Payload"), formatBytes(s.Video.Bytes)},
		{l10n.T("Duration"), fmt.Sprintf("%d ms", s.Video.DurationMs)},
		{l10n.T("Bitrate"), formatBitrate(s.Bitrate())},
	})

	if s.Elapsed > 0 {
		fmt.Fprintf(&b, "%s: %s\n", l10n.T("Elapsed"), s.Elapsed.Round(time.Millisecond))
	}
	return b.String()
}

func table(b *strings.Builder, rows [][2]string) {
	fmt.Fprintf(b, "| %s | %s |\n", l10n.T("Item"), l10n.T("Value"))
	b.WriteString("|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], strings.ReplaceAll(r[1], "|", `\|`))
	}
	b.WriteString("\n")
}

func inputLayout(s Settings) string {
	switch {
	case s.Grayscale:
		return "gray8"
	case s.RGB:
		return "rgb24"
	default:
		return "bgr24"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatBitrate(bps int64) string {
	switch {
	case bps == 0:
		return "-"
	case bps >= 1_000_000:
		return fmt.Sprintf("%.2f Mbps", float64(bps)/1e6)
	case bps >= 1_000:
		return fmt.Sprintf("%.1f kbps", float64(bps)/1e3)
	default:
		return fmt.Sprintf("%d bps", bps)
	}
}
