// Package image2muxer writes one still image file per packet. A filename
// containing %d (optionally zero padded, e.g. %04d) is expanded with the
// frame number starting at 1; without one, every packet overwrites the same
// file.
package image2muxer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// StartNumber is the number substituted for the first frame.
const StartNumber = 1

var (
	// ErrBadPattern is returned for filenames with more than one %d.
	ErrBadPattern = errors.New("image2muxer: filename must contain at most one %d")
)

// Muxer implements ports.Muxer.
type Muxer struct {
	pattern string
	fs      ports.FileSystem
	next    int
	written []string
}

// New creates a muxer for cfg.URL.
func New(cfg ports.MuxerConfig) (ports.Muxer, error) {
	if cfg.FS == nil {
		return nil, fmt.Errorf("image2muxer: no file system")
	}
	if _, err := FrameFilename(cfg.URL, StartNumber); err != nil {
		return nil, err
	}
	return &Muxer{pattern: cfg.URL, fs: cfg.FS, next: StartNumber}, nil
}

// HasPattern reports whether name contains a frame number placeholder.
func HasPattern(name string) bool {
	out, err := FrameFilename(name, 0)
	return err == nil && out != strings.ReplaceAll(name, "%%", "%")
}

// FrameFilename expands the placeholder in pattern with n. "%%" is a
// literal percent sign.
func FrameFilename(pattern string, n int) (string, error) {
	var b strings.Builder
	found := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
			j++
		}
		switch {
		case j < len(pattern) && pattern[j] == '%' && j == i+1:
			b.WriteByte('%')
			i = j
		case j < len(pattern) && pattern[j] == 'd':
			if found {
				return "", ErrBadPattern
			}
			found = true
			width := 0
			if digits := pattern[i+1 : j]; digits != "" {
				width, _ = strconv.Atoi(digits)
			}
			fmt.Fprintf(&b, "%0*d", width, n)
			i = j
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// WriteHeader accepts still-image codecs and keeps frame-count timestamps.
func (m *Muxer) WriteHeader(st *ports.Stream) error {
	switch st.Codecpar.CodecID {
	case av.CodecPNG, av.CodecMJPEG:
		return nil
	}
	return fmt.Errorf("image2muxer: %w: %s", av.ErrUnsupportedCodec, st.Codecpar.CodecID)
}

// WritePacket writes the packet payload to the next numbered file.
func (m *Muxer) WritePacket(pkt *av.Packet) error {
	name, err := FrameFilename(m.pattern, m.next)
	if err != nil {
		return err
	}
	if err := m.fs.WriteFile(name, pkt.Data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	m.next++
	m.written = append(m.written, name)
	return nil
}

// WriteTrailer is a no-op; every image is complete once written.
func (m *Muxer) WriteTrailer() error {
	return nil
}

// Written returns the files written so far.
func (m *Muxer) Written() []string {
	return m.written
}

var _ ports.Muxer = (*Muxer)(nil)
