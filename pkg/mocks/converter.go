package mocks

import (
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// Converter is a mock implementation of ports.PixelConverter that writes the
// first source byte into every plane byte.
type Converter struct {
	Src, Dst av.PixelFormat
	Recorder *Recorder

	ConvertFunc func(src av.Image, dst *av.Frame) error

	// Recorded calls for verification
	ConvertCalls int
	Closed       bool
}

func (m *Converter) Convert(src av.Image, dst *av.Frame) error {
	m.ConvertCalls++
	if m.ConvertFunc != nil {
		return m.ConvertFunc(src, dst)
	}
	var v byte
	if len(src.Data) > 0 {
		v = src.Data[0]
	}
	for _, plane := range dst.Data {
		for i := range plane {
			plane[i] = v
		}
	}
	return nil
}

func (m *Converter) Close() {
	m.Recorder.Record("converter.close")
	m.Closed = true
}

var _ ports.PixelConverter = (*Converter)(nil)

// ConverterFactory returns a factory handing out mock converters, recording
// each one in *created. A non-nil err makes every construction fail.
func ConverterFactory(created *[]*Converter, rec *Recorder, err error) ports.ConverterFactory {
	return func(width, height int, src, dst av.PixelFormat) (ports.PixelConverter, error) {
		if err != nil {
			return nil, err
		}
		c := &Converter{Src: src, Dst: dst, Recorder: rec}
		if created != nil {
			*created = append(*created, c)
		}
		return c, nil
	}
}
