package ports

import (
	"io"

	"github.com/user/vidwriter/pkg/av"
)

// Muxer writes packets of a single stream into a container.
type Muxer interface {
	// WriteHeader writes the container preamble. The muxer may replace
	// st.TimeBase with the tick unit it stores timestamps in.
	WriteHeader(st *Stream) error

	// WritePacket stores one packet whose timestamps are in st.TimeBase.
	WritePacket(pkt *av.Packet) error

	// WriteTrailer finalises the container. No packets may follow.
	WriteTrailer() error
}

// FormatFlags describe container capabilities.
type FormatFlags int

const (
	// FormatNoFile means the muxer manages its own output and needs no sink.
	FormatNoFile FormatFlags = 1 << iota
	// FormatGlobalHeader means codec configuration belongs in the header.
	FormatGlobalHeader
	// FormatTSNonStrict means consecutive packets may share a dts.
	FormatTSNonStrict
)

// MuxerConfig is handed to a format's constructor.
type MuxerConfig struct {
	// URL is the output filename as given by the caller.
	URL string
	// Output is the opened sink; nil for FormatNoFile formats.
	Output io.Writer
	// FS is available to formats that create their own files.
	FS FileSystem
}

// OutputFormat describes a registered container.
type OutputFormat struct {
	Name       string
	LongName   string
	Extensions []string
	VideoCodec av.CodecID

	// CodecByExtension overrides VideoCodec based on the output extension.
	CodecByExtension map[string]av.CodecID

	// Codecs lists the codecs the container can carry. Empty means any.
	Codecs []av.CodecID

	// Accepts, when set, must also approve a filename for GuessFormat to
	// pick this format by extension.
	Accepts func(filename string) bool

	Flags FormatFlags
	New   func(cfg MuxerConfig) (Muxer, error)
}

// Has reports whether all flags in f are set.
func (o *OutputFormat) Has(f FormatFlags) bool {
	return o.Flags&f == f
}

// Supports reports whether the container can carry id.
func (o *OutputFormat) Supports(id av.CodecID) bool {
	if len(o.Codecs) == 0 {
		return true
	}
	for _, c := range o.Codecs {
		if c == id {
			return true
		}
	}
	return false
}

// Stream is the container-side description of the single video stream.
type Stream struct {
	Index        int
	ID           int
	TimeBase     av.Rational
	AvgFrameRate av.Rational
	Codecpar     CodecParameters
}

// CodecParameters mirror the opened codec context.
type CodecParameters struct {
	CodecID     av.CodecID
	Width       int
	Height      int
	PixelFormat av.PixelFormat
	Extradata   []byte
}
