package ffmpegencoder

import (
	"errors"
	"fmt"
	"io"

	"github.com/pion/webrtc/v4/pkg/media/h264reader"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"

	"github.com/user/vidwriter/pkg/bitstream"
)

// readAnnexB groups the NAL units of an H.264 byte stream into access units
// and hands each one to emit in Annex B form.
func readAnnexB(r io.Reader, emit func(au []byte)) error {
	reader, err := h264reader.NewReader(r)
	if err != nil {
		return fmt.Errorf("h264 reader: %w", err)
	}

	var au []byte
	hasSlice := false
	for {
		nal, err := reader.NextNAL()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read nal: %w", err)
		}
		if len(nal.Data) == 0 {
			continue
		}

		if hasSlice && bitstream.StartsAccessUnit(nal.Data) {
			emit(au)
			au = nil
			hasSlice = false
		}
		au = append(au, 0, 0, 0, 1)
		au = append(au, nal.Data...)
		if bitstream.IsVCL(nal.Data) {
			hasSlice = true
		}
	}
	if hasSlice {
		emit(au)
	}
	return nil
}

// readIVF hands each IVF frame payload to emit.
func readIVF(r io.Reader, emit func(frame []byte)) error {
	reader, _, err := ivfreader.NewWith(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		return fmt.Errorf("ivf reader: %w", err)
	}
	for {
		payload, _, err := reader.ParseNextFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read ivf frame: %w", err)
		}
		emit(payload)
	}
}
