// Package formats is the registry of output containers and encoders. It
// answers the two lookups the writer needs: which container a filename
// implies, and which encoder serves a name or codec.
package formats

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// FallbackFormat is used when no container claims a filename's extension.
const FallbackFormat = "mpegts"

// Registry holds output formats and encoders in registration order.
type Registry struct {
	mu      sync.RWMutex
	formats []*ports.OutputFormat
	codecs  []*ports.Codec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterFormat adds an output format.
func (r *Registry) RegisterFormat(f *ports.OutputFormat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats = append(r.formats, f)
}

// RegisterCodec adds an encoder. When several encoders share a codec id, the
// first registered one is the default for that codec.
func (r *Registry) RegisterCodec(c *ports.Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs = append(r.codecs, c)
}

// Formats returns the registered formats.
func (r *Registry) Formats() []*ports.OutputFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*ports.OutputFormat(nil), r.formats...)
}

// Codecs returns the registered encoders.
func (r *Registry) Codecs() []*ports.Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*ports.Codec(nil), r.codecs...)
}

// FormatByName looks up a format by short name.
func (r *Registry) FormatByName(name string) (*ports.OutputFormat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return nil, false
}

// GuessFormat picks the first format claiming the filename's extension whose
// Accepts hook, if any, approves the name.
func (r *Registry) GuessFormat(filename string) (*ports.OutputFormat, bool) {
	ext := Extension(filename)
	if ext == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		if f.Accepts != nil && !f.Accepts(filename) {
			continue
		}
		for _, e := range f.Extensions {
			if e == ext {
				return f, true
			}
		}
	}
	return nil, false
}

// FindEncoderByName looks up an encoder by exact name.
func (r *Registry) FindEncoderByName(name string) (*ports.Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.codecs {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// FindEncoder returns the first encoder registered for id.
func (r *Registry) FindEncoder(id av.CodecID) (*ports.Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.codecs {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// DefaultCodec returns the video codec a format uses for filename when no
// encoder is named.
func DefaultCodec(f *ports.OutputFormat, filename string) av.CodecID {
	if id, ok := f.CodecByExtension[Extension(filename)]; ok {
		return id
	}
	return f.VideoCodec
}

// Extension returns the lower-case extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
