package summarizer

import (
	"encoding/json"
	"testing"
	"time"
)

func TestJSONFormatter_Format(t *testing.T) {
	s := &Summary{
		Elapsed: 1250 * time.Millisecond,
		Output:  OutputInfo{Path: "out.ts", Format: "mpegts", Codec: "h264"},
		Video:   VideoInfo{Width: 64, Height: 48, Bytes: 1000, DurationMs: 1000},
	}

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(NewJSONFormatter().Format(s)), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}

	if got["elapsed_ms"] != float64(1250) {
		t.Errorf("expected elapsed_ms 1250, got %v", got["elapsed_ms"])
	}
	if got["bitrate_bps"] != float64(8000) {
		t.Errorf("expected bitrate_bps 8000, got %v", got["bitrate_bps"])
	}
	output, _ := got["output"].(map[string]interface{})
	if output["format"] != "mpegts" {
		t.Errorf("expected output.format mpegts, got %v", output["format"])
	}
	if _, ok := got["Elapsed"]; ok {
		t.Error("raw duration should not be serialised")
	}
}

func TestForPath(t *testing.T) {
	if _, ok := ForPath("run.JSON").(*JSONFormatter); !ok {
		t.Error("expected JSON formatter for .JSON")
	}
	if _, ok := ForPath("run.md").(*MarkdownFormatter); !ok {
		t.Error("expected Markdown formatter for .md")
	}
	if _, ok := ForPath("summary").(*MarkdownFormatter); !ok {
		t.Error("expected Markdown formatter without extension")
	}
}
