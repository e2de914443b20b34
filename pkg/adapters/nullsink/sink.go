// Package nullsink provides the debug sink used when no debug directory is
// configured.
package nullsink

import "github.com/user/vidwriter/pkg/ports"

// Sink discards stream descriptions and packets.
type Sink struct{}

var _ ports.DebugSink = (*Sink)(nil)

// New creates a new Sink.
func New() *Sink { return &Sink{} }

// Enabled reports false so that callers skip building debug payloads.
func (*Sink) Enabled() bool { return false }

func (*Sink) SaveStreamInfo([]byte) error { return nil }

func (*Sink) SavePacket(int, []byte) error { return nil }
