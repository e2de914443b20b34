package ports

import (
	"github.com/user/vidwriter/pkg/av"
)

// Encoder drives one codec instance through the send/receive protocol.
//
// SendFrame queues a picture; a nil frame starts the flush. ReceivePacket
// returns av.ErrAgain when more input is needed and av.ErrEOF once a flushed
// encoder has emitted everything. SendFrame returns av.ErrEOF after a flush.
type Encoder interface {
	// Open configures the codec. Recognised entries are removed from opts;
	// anything left over is reported by the caller.
	Open(cfg EncoderConfig, opts *av.Dictionary) error

	SendFrame(frame *av.Frame) error
	ReceivePacket() (*av.Packet, error)

	// Extradata returns the out-of-band codec configuration, if any.
	Extradata() []byte

	// Close frees the codec context. It is safe to call more than once.
	Close() error
}

// EncoderConfig describes the picture stream an encoder is opened for.
type EncoderConfig struct {
	Width       int
	Height      int
	PixelFormat av.PixelFormat
	TimeBase    av.Rational
	FrameRate   av.Rational

	// GlobalHeader asks the codec to place parameter sets in Extradata
	// instead of (or in addition to) the bitstream.
	GlobalHeader bool
}

// Codec describes a registered encoder implementation.
type Codec struct {
	Name     string
	LongName string
	ID       av.CodecID

	// PixelFormats lists the accepted input layouts in order of preference.
	PixelFormats []av.PixelFormat

	New func() Encoder
}
