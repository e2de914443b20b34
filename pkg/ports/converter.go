package ports

import "github.com/user/vidwriter/pkg/av"

// PixelConverter converts caller images into encoder frames of the same size.
type PixelConverter interface {
	Convert(src av.Image, dst *av.Frame) error
	Close()
}

// ConverterFactory builds a converter for a fixed size and layout pair.
type ConverterFactory func(width, height int, src, dst av.PixelFormat) (PixelConverter, error)
