// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"path/filepath"

	"github.com/user/vidwriter/pkg/ports"
)

// Sink saves debug output to files under a base directory.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveStreamInfo writes stream.json.
func (s *Sink) SaveStreamInfo(data []byte) error {
	path := filepath.Join(s.baseDir, "stream.json")
	return s.fs.WriteFile(path, data)
}

// SavePacket writes packets/packet-NNNNNN.bin.
func (s *Sink) SavePacket(index int, data []byte) error {
	dir := filepath.Join(s.baseDir, "packets")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("packet-%06d.bin", index))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
