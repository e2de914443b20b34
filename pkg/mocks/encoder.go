package mocks

import (
	"fmt"
	"sync"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// Recorder collects named events from several mocks in call order.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event.
func (r *Recorder) Record(event string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Encoder is a mock implementation of ports.Encoder. It keeps a reference to
// each submitted frame until the matching packet is received and delays
// output by Delay frames, like an encoder with a lookahead window. Packet
// payloads end with the first luma byte of the frame as seen at emit time.
type Encoder struct {
	Delay      int
	Extra      []byte
	Recorder   *Recorder
	OpenFunc   func(cfg ports.EncoderConfig, opts *av.Dictionary) error
	SendErr    func(frame *av.Frame) error
	ReceiveErr func() error
	CloseErr   error

	// Recorded calls for verification
	Config     ports.EncoderConfig
	Opened     bool
	SendCalls  int
	FlushCalls int
	CloseCalls int

	held    []*av.Frame
	flushed bool
}

// Open records the configuration and consumes the "mock_opt" option.
func (m *Encoder) Open(cfg ports.EncoderConfig, opts *av.Dictionary) error {
	m.Recorder.Record("encoder.open")
	if m.OpenFunc != nil {
		if err := m.OpenFunc(cfg, opts); err != nil {
			return err
		}
	}
	opts.Delete("mock_opt")
	m.Config = cfg
	m.Opened = true
	m.flushed = false
	m.held = nil
	return nil
}

func (m *Encoder) SendFrame(frame *av.Frame) error {
	if m.SendErr != nil {
		if err := m.SendErr(frame); err != nil {
			return err
		}
	}
	if m.flushed {
		return av.ErrEOF
	}
	if frame == nil {
		m.FlushCalls++
		m.flushed = true
		return nil
	}
	m.SendCalls++
	m.held = append(m.held, frame.Ref())
	return nil
}

func (m *Encoder) ReceivePacket() (*av.Packet, error) {
	if m.ReceiveErr != nil {
		if err := m.ReceiveErr(); err != nil {
			return nil, err
		}
	}
	if len(m.held) == 0 {
		if m.flushed {
			return nil, av.ErrEOF
		}
		return nil, av.ErrAgain
	}
	if !m.flushed && len(m.held) <= m.Delay {
		return nil, av.ErrAgain
	}

	f := m.held[0]
	m.held = m.held[1:]
	pkt := &av.Packet{
		Data:     append([]byte(fmt.Sprintf("frame-%d:", f.PTS)), f.Data[0][0]),
		PTS:      f.PTS,
		DTS:      f.PTS - int64(m.Delay),
		Duration: 1,
	}
	if f.PTS == 1 {
		pkt.Flags = av.PacketFlagKey
	}
	f.Unref()
	return pkt, nil
}

func (m *Encoder) Extradata() []byte {
	return m.Extra
}

func (m *Encoder) Close() error {
	m.CloseCalls++
	m.Recorder.Record("encoder.close")
	for _, f := range m.held {
		f.Unref()
	}
	m.held = nil
	return m.CloseErr
}

// Held returns the number of frames the mock still references.
func (m *Encoder) Held() int {
	return len(m.held)
}

var _ ports.Encoder = (*Encoder)(nil)

// NewCodec describes enc as a registered codec. Every New call returns the
// same mock so tests can inspect it.
func NewCodec(name string, id av.CodecID, pix []av.PixelFormat, enc *Encoder) *ports.Codec {
	return &ports.Codec{
		Name:         name,
		ID:           id,
		PixelFormats: pix,
		New:          func() ports.Encoder { return enc },
	}
}
