// Package rawmuxer writes elementary streams: Annex B H.264 and IVF for the
// VPx and AV1 codecs.
package rawmuxer

import (
	"bufio"
	"fmt"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/bitstream"
	"github.com/user/vidwriter/pkg/ports"
)

// H264 writes access units back to back in Annex B form.
type H264 struct {
	bw        *bufio.Writer
	extradata []byte
}

// NewH264 creates a raw H.264 muxer writing to cfg.Output.
func NewH264(cfg ports.MuxerConfig) (ports.Muxer, error) {
	if cfg.Output == nil {
		return nil, fmt.Errorf("rawmuxer: no output")
	}
	return &H264{bw: bufio.NewWriter(cfg.Output)}, nil
}

// WriteHeader remembers out-of-band parameter sets; nothing is written.
func (m *H264) WriteHeader(st *ports.Stream) error {
	if st.Codecpar.CodecID != av.CodecH264 {
		return fmt.Errorf("rawmuxer: %w: %s in h264", av.ErrUnsupportedCodec, st.Codecpar.CodecID)
	}
	m.extradata = st.Codecpar.Extradata
	return nil
}

// WritePacket writes one access unit, prefixing keyframes that lack
// parameter sets with the extradata.
func (m *H264) WritePacket(pkt *av.Packet) error {
	if pkt.IsKey() && len(m.extradata) > 0 {
		if _, _, err := bitstream.ParameterSets(pkt.Data); err != nil {
			if _, err := m.bw.Write(m.extradata); err != nil {
				return err
			}
		}
	}
	_, err := m.bw.Write(pkt.Data)
	return err
}

// WriteTrailer flushes buffered output.
func (m *H264) WriteTrailer() error {
	return m.bw.Flush()
}

var _ ports.Muxer = (*H264)(nil)
