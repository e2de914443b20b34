package av

import "fmt"

// Image is a caller-owned interleaved 8-bit raster: 1 channel for grayscale,
// 3 for BGR or RGB. Rows start every Stride bytes.
type Image struct {
	Data     []byte
	Stride   int
	Width    int
	Height   int
	Channels int
}

// NewImage allocates a tightly packed image.
func NewImage(width, height, channels int) Image {
	return Image{
		Data:     make([]byte, width*height*channels),
		Stride:   width * channels,
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// Row returns the visible bytes of row y.
func (img Image) Row(y int) []byte {
	off := y * img.Stride
	return img.Data[off : off+img.Width*img.Channels]
}

// Check verifies the image has the expected geometry and enough backing data.
func (img Image) Check(width, height, channels int) error {
	if img.Width != width || img.Height != height || img.Channels != channels {
		return fmt.Errorf("%w: got %dx%dx%d, want %dx%dx%d", ErrImageMismatch,
			img.Width, img.Height, img.Channels, width, height, channels)
	}
	rowBytes := width * channels
	if img.Stride < rowBytes {
		return fmt.Errorf("%w: stride %d shorter than row %d", ErrImageMismatch, img.Stride, rowBytes)
	}
	if height > 0 && len(img.Data) < img.Stride*(height-1)+rowBytes {
		return fmt.Errorf("%w: buffer too small (%d bytes)", ErrImageMismatch, len(img.Data))
	}
	return nil
}
