package summarizer

import (
	"testing"

	"github.com/user/vidwriter/pkg/mocks"
)

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(s *Summary) string {
		return "summary of " + s.Output.Path
	}), fs)

	err := w.Write("reports/run.md", &Summary{Output: OutputInfo{Path: "out.mp4"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, ok := fs.GetFile("reports/run.md")
	if !ok {
		t.Fatal("expected summary file to be written")
	}
	if string(data) != "summary of out.mp4" {
		t.Errorf("unexpected content %q", data)
	}
	if exists, _ := fs.Exists("reports"); !exists {
		t.Error("expected parent directory to be created")
	}
}
