package av

import "fmt"

// CodecID identifies a compressed video bitstream format.
type CodecID int

const (
	CodecNone CodecID = iota
	CodecRawVideo
	CodecMJPEG
	CodecPNG
	CodecH264
	CodecVP8
	CodecVP9
	CodecAV1
)

var codecNames = map[CodecID]string{
	CodecNone:     "none",
	CodecRawVideo: "rawvideo",
	CodecMJPEG:    "mjpeg",
	CodecPNG:      "png",
	CodecH264:     "h264",
	CodecVP8:      "vp8",
	CodecVP9:      "vp9",
	CodecAV1:      "av1",
}

func (c CodecID) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return fmt.Sprintf("codec(%d)", int(c))
}

// IntraOnly reports whether every packet of the codec is a keyframe.
func (c CodecID) IntraOnly() bool {
	switch c {
	case CodecRawVideo, CodecMJPEG, CodecPNG:
		return true
	default:
		return false
	}
}
