package rawmuxer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

const (
	ivfHeaderSize      = 32
	ivfFrameHeaderSize = 12
)

var (
	// ErrTrailerWritten is returned for packets after the trailer.
	ErrTrailerWritten = errors.New("rawmuxer: trailer already written")
)

var ivfFourCC = map[av.CodecID]string{
	av.CodecVP8: "VP80",
	av.CodecVP9: "VP90",
	av.CodecAV1: "AV01",
}

// IVF writes the 32-byte IVF file header followed by size/pts framed
// packets. The frame count in the header is patched on the trailer when the
// output is seekable.
type IVF struct {
	w        io.Writer
	frames   uint32
	finished bool
}

// NewIVF creates an IVF muxer writing to cfg.Output.
func NewIVF(cfg ports.MuxerConfig) (ports.Muxer, error) {
	if cfg.Output == nil {
		return nil, fmt.Errorf("rawmuxer: no output")
	}
	return &IVF{w: cfg.Output}, nil
}

// WriteHeader writes the file header. Timestamps stay in the codec time base.
func (m *IVF) WriteHeader(st *ports.Stream) error {
	cp := st.Codecpar
	fourcc, ok := ivfFourCC[cp.CodecID]
	if !ok {
		return fmt.Errorf("rawmuxer: %w: %s in ivf", av.ErrUnsupportedCodec, cp.CodecID)
	}

	hdr := make([]byte, ivfHeaderSize)
	copy(hdr[0:4], "DKIF")
	binary.LittleEndian.PutUint16(hdr[4:], 0)
	binary.LittleEndian.PutUint16(hdr[6:], ivfHeaderSize)
	copy(hdr[8:12], fourcc)
	binary.LittleEndian.PutUint16(hdr[12:], uint16(cp.Width))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(cp.Height))
	binary.LittleEndian.PutUint32(hdr[16:], uint32(st.TimeBase.Den))
	binary.LittleEndian.PutUint32(hdr[20:], uint32(st.TimeBase.Num))
	_, err := m.w.Write(hdr)
	return err
}

// WritePacket writes one frame record.
func (m *IVF) WritePacket(pkt *av.Packet) error {
	if m.finished {
		return ErrTrailerWritten
	}
	var fh [ivfFrameHeaderSize]byte
	binary.LittleEndian.PutUint32(fh[0:], uint32(len(pkt.Data)))
	binary.LittleEndian.PutUint64(fh[4:], uint64(pkt.PTS))
	if _, err := m.w.Write(fh[:]); err != nil {
		return err
	}
	if _, err := m.w.Write(pkt.Data); err != nil {
		return err
	}
	m.frames++
	return nil
}

// WriteTrailer patches the frame count.
func (m *IVF) WriteTrailer() error {
	if m.finished {
		return nil
	}
	m.finished = true
	ws, ok := m.w.(io.WriteSeeker)
	if !ok {
		return nil
	}
	end, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil
	}
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], m.frames)
	if _, err := ws.Seek(24, io.SeekStart); err != nil {
		return err
	}
	if _, err := ws.Write(n[:]); err != nil {
		return err
	}
	_, err = ws.Seek(end, io.SeekStart)
	return err
}

var _ ports.Muxer = (*IVF)(nil)
