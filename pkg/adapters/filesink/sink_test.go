package filesink

import (
	"path/filepath"
	"testing"

	"github.com/user/vidwriter/pkg/mocks"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveStreamInfo(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := []byte(`{"format": "mp4"}`)
	err := sink.SaveStreamInfo(data)
	if err != nil {
		t.Fatalf("SaveStreamInfo failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "stream.json")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SavePacket(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := []byte{0x00, 0x00, 0x00, 0x01, 0x65}
	err := sink.SavePacket(3, data)
	if err != nil {
		t.Fatalf("SavePacket failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "packets", "packet-000003.bin")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %v, got %v", data, saved)
	}
}

func TestSink_SaveMultiplePackets(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	for i := 0; i < 10; i++ {
		err := sink.SavePacket(i, []byte{0xFF})
		if err != nil {
			t.Fatalf("SavePacket %d failed: %v", i, err)
		}
	}

	if count := len(fs.GetAllFiles()); count != 10 {
		t.Errorf("expected 10 files, got %d", count)
	}
}
