package mocks

import (
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// Muxer is a mock implementation of ports.Muxer.
type Muxer struct {
	// TimeBase, when valid, replaces the stream time base in WriteHeader.
	TimeBase av.Rational
	Recorder *Recorder

	WriteHeaderFunc  func(st *ports.Stream) error
	WritePacketFunc  func(pkt *av.Packet) error
	WriteTrailerFunc func() error

	// Recorded calls for verification
	Config        ports.MuxerConfig
	Stream        ports.Stream
	HeaderCalled  bool
	Packets       []av.Packet
	TrailerCalled bool
}

func (m *Muxer) WriteHeader(st *ports.Stream) error {
	m.Recorder.Record("muxer.header")
	if m.WriteHeaderFunc != nil {
		if err := m.WriteHeaderFunc(st); err != nil {
			return err
		}
	}
	if m.TimeBase.Valid() {
		st.TimeBase = m.TimeBase
	}
	m.HeaderCalled = true
	m.Stream = *st
	if m.Config.Output != nil {
		_, _ = m.Config.Output.Write([]byte("HDR"))
	}
	return nil
}

func (m *Muxer) WritePacket(pkt *av.Packet) error {
	if m.WritePacketFunc != nil {
		if err := m.WritePacketFunc(pkt); err != nil {
			return err
		}
	}
	p := *pkt
	p.Data = append([]byte(nil), pkt.Data...)
	m.Packets = append(m.Packets, p)
	if m.Config.Output != nil {
		_, _ = m.Config.Output.Write(pkt.Data)
	}
	return nil
}

func (m *Muxer) WriteTrailer() error {
	m.Recorder.Record("muxer.trailer")
	m.TrailerCalled = true
	if m.WriteTrailerFunc != nil {
		return m.WriteTrailerFunc()
	}
	return nil
}

var _ ports.Muxer = (*Muxer)(nil)

// NewFormat describes a container backed by a fresh mock muxer per open.
// Each created muxer is appended to *created.
func NewFormat(name string, ext []string, codec av.CodecID, flags ports.FormatFlags, created *[]*Muxer, configure func(*Muxer)) *ports.OutputFormat {
	return &ports.OutputFormat{
		Name:       name,
		Extensions: ext,
		VideoCodec: codec,
		Flags:      flags,
		New: func(cfg ports.MuxerConfig) (ports.Muxer, error) {
			m := &Muxer{Config: cfg}
			if configure != nil {
				configure(m)
			}
			if created != nil {
				*created = append(*created, m)
			}
			return m, nil
		},
	}
}
