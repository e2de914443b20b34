package av

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the writer wraps exactly one of these,
// so callers can branch with errors.Is on the kind alone.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrEncode        = errors.New("encode error")
	ErrMux           = errors.New("mux error")
	ErrResource      = errors.New("resource error")
)

// Control-flow markers returned by encoders. They are never errors to the caller.
var (
	// ErrAgain means the encoder needs more input before it can emit output.
	ErrAgain = errors.New("av: resource temporarily unavailable")

	// ErrEOF means the encoder has been fully drained after a flush.
	ErrEOF = errors.New("av: end of file")
)

var (
	ErrUnsupportedEncoder     = fmt.Errorf("%w: unsupported encoder", ErrConfiguration)
	ErrUnsupportedCodec       = fmt.Errorf("%w: codec not supported by container", ErrConfiguration)
	ErrNoVideoCodec           = fmt.Errorf("%w: output format does not support video streams", ErrConfiguration)
	ErrNoSupportedPixelFormat = fmt.Errorf("%w: codec does not have a supported pixel format", ErrConfiguration)
	ErrInvalidOptions         = fmt.Errorf("%w: invalid options string", ErrConfiguration)
	ErrInvalidFrameRate       = fmt.Errorf("%w: invalid frame rate", ErrConfiguration)
	ErrConversionInitFailed   = fmt.Errorf("%w: could not initialize the conversion context", ErrConfiguration)

	ErrEncodeSubmit  = fmt.Errorf("%w: error sending a frame to the encoder", ErrEncode)
	ErrEncodeReceive = fmt.Errorf("%w: error encoding a frame", ErrEncode)

	ErrMuxHeader  = fmt.Errorf("%w: error writing header", ErrMux)
	ErrMuxWrite   = fmt.Errorf("%w: error while writing output packet", ErrMux)
	ErrMuxTrailer = fmt.Errorf("%w: error writing trailer", ErrMux)

	ErrFrameAlloc         = fmt.Errorf("%w: could not allocate frame data", ErrResource)
	ErrFrameNotWritable   = fmt.Errorf("%w: could not make frame writable", ErrResource)
	ErrSinkOpen           = fmt.Errorf("%w: could not open output", ErrResource)
	ErrEncoderUnavailable = fmt.Errorf("%w: encoder backend unavailable", ErrResource)

	// ErrImageMismatch is returned when an input image does not match the
	// size or channel count the session was opened with.
	ErrImageMismatch = errors.New("av: image does not match configured size or channels")
)

// IsControl reports whether err is one of the encoder control-flow markers.
func IsControl(err error) bool {
	return errors.Is(err, ErrAgain) || errors.Is(err, ErrEOF)
}
