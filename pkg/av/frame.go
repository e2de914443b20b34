package av

import (
	"fmt"
	"sync/atomic"
)

// linesizeAlign matches the row alignment SIMD converters expect.
const linesizeAlign = 32

// Frame is a reference-counted raw picture. Buffers are shared between the
// frames returned by Ref; a frame may only be written to when it holds the
// sole reference.
type Frame struct {
	Format   PixelFormat
	Width    int
	Height   int
	Data     [][]byte
	Linesize []int
	PTS      int64

	buf *frameBuffer
}

type frameBuffer struct {
	refs atomic.Int32
}

// NewFrame allocates a frame with aligned planes for the given layout.
func NewFrame(format PixelFormat, width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 || format.Planes() == 0 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrFrameAlloc, format, width, height)
	}
	f := &Frame{
		Format: format,
		Width:  width,
		Height: height,
		PTS:    NoPTS,
	}
	f.allocPlanes()
	return f, nil
}

func (f *Frame) allocPlanes() {
	n := f.Format.Planes()
	f.Data = make([][]byte, n)
	f.Linesize = make([]int, n)
	for i := 0; i < n; i++ {
		rowBytes, rows := f.Format.PlaneSize(i, f.Width, f.Height)
		stride := (rowBytes + linesizeAlign - 1) &^ (linesizeAlign - 1)
		f.Linesize[i] = stride
		f.Data[i] = make([]byte, stride*rows)
	}
	f.buf = &frameBuffer{}
	f.buf.refs.Store(1)
}

// Ref returns a new frame sharing this frame's buffers.
func (f *Frame) Ref() *Frame {
	if f.buf == nil {
		return nil
	}
	f.buf.refs.Add(1)
	ref := *f
	ref.Data = append([][]byte(nil), f.Data...)
	ref.Linesize = append([]int(nil), f.Linesize...)
	return &ref
}

// Unref drops this frame's reference to its buffers.
func (f *Frame) Unref() {
	if f.buf == nil {
		return
	}
	f.buf.refs.Add(-1)
	f.buf = nil
	f.Data = nil
	f.Linesize = nil
}

// IsWritable reports whether no other frame shares the buffers.
func (f *Frame) IsWritable() bool {
	return f.buf != nil && f.buf.refs.Load() == 1
}

// MakeWritable ensures the frame owns its buffers exclusively, copying the
// picture into fresh planes when another reference still holds them.
func (f *Frame) MakeWritable() error {
	if f.buf == nil {
		return fmt.Errorf("%w: frame has no buffers", ErrFrameNotWritable)
	}
	if f.IsWritable() {
		return nil
	}

	oldData, oldLinesize, oldBuf := f.Data, f.Linesize, f.buf
	f.allocPlanes()
	for i := range f.Data {
		rowBytes, rows := f.Format.PlaneSize(i, f.Width, f.Height)
		for y := 0; y < rows; y++ {
			copy(f.Data[i][y*f.Linesize[i]:y*f.Linesize[i]+rowBytes],
				oldData[i][y*oldLinesize[i]:y*oldLinesize[i]+rowBytes])
		}
	}
	oldBuf.refs.Add(-1)
	return nil
}

// Plane returns the visible rows of plane i packed without padding.
func (f *Frame) Plane(i int) []byte {
	rowBytes, rows := f.Format.PlaneSize(i, f.Width, f.Height)
	out := make([]byte, 0, rowBytes*rows)
	for y := 0; y < rows; y++ {
		off := y * f.Linesize[i]
		out = append(out, f.Data[i][off:off+rowBytes]...)
	}
	return out
}

// Packed returns all planes concatenated without padding.
func (f *Frame) Packed() []byte {
	out := make([]byte, 0, f.Format.BufferSize(f.Width, f.Height))
	for i := range f.Data {
		out = append(out, f.Plane(i)...)
	}
	return out
}
