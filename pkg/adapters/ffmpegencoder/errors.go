package ffmpegencoder

import (
	"errors"
	"fmt"

	"github.com/user/vidwriter/pkg/av"
)

var (
	// ErrNotInitialized is returned when encoder methods are called before Open.
	ErrNotInitialized = errors.New("ffmpegencoder: encoder not initialized")

	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = fmt.Errorf("%w: ffmpegencoder: ffmpeg not found", av.ErrEncoderUnavailable)

	// ErrProcessFailed is returned when the ffmpeg process exits with an error.
	ErrProcessFailed = errors.New("ffmpegencoder: ffmpeg process failed")
)
