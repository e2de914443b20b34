package formats

import (
	"github.com/user/vidwriter/pkg/adapters/avimuxer"
	"github.com/user/vidwriter/pkg/adapters/ffmpegencoder"
	"github.com/user/vidwriter/pkg/adapters/fmp4muxer"
	"github.com/user/vidwriter/pkg/adapters/image2muxer"
	"github.com/user/vidwriter/pkg/adapters/intraencoder"
	"github.com/user/vidwriter/pkg/adapters/mkvmuxer"
	"github.com/user/vidwriter/pkg/adapters/mp4muxer"
	"github.com/user/vidwriter/pkg/adapters/rawmuxer"
	"github.com/user/vidwriter/pkg/adapters/tsmuxer"
	"github.com/user/vidwriter/pkg/adapters/y4mmuxer"
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// Default builds the standard registry. The ffmpeg-backed encoders are
// registered only when an ffmpeg binary can be found.
func Default(renderer ports.Renderer) *Registry {
	return Build(renderer, ffmpegencoder.IsAvailable())
}

// Build builds the standard registry with or without the ffmpeg encoders.
func Build(renderer ports.Renderer, withFFmpeg bool) *Registry {
	r := NewRegistry()

	if withFFmpeg {
		for _, c := range ffmpegencoder.Codecs() {
			r.RegisterCodec(c)
		}
	}
	r.RegisterCodec(intraencoder.RawVideo())
	r.RegisterCodec(intraencoder.MJPEG(renderer))
	r.RegisterCodec(intraencoder.PNG(renderer))

	mkvDefault := av.CodecMJPEG
	if withFFmpeg {
		mkvDefault = av.CodecH264
	}

	for _, f := range []*ports.OutputFormat{
		{
			Name:       "mp4",
			LongName:   "MP4 (MPEG-4 Part 14)",
			Extensions: []string{"mp4", "m4v", "mov"},
			VideoCodec: av.CodecH264,
			Codecs:     []av.CodecID{av.CodecH264, av.CodecAV1},
			Flags:      ports.FormatGlobalHeader,
			New:        mp4muxer.New,
		},
		{
			Name:       "matroska",
			LongName:   "Matroska",
			Extensions: []string{"mkv"},
			VideoCodec: mkvDefault,
			Codecs:     []av.CodecID{av.CodecH264, av.CodecVP8, av.CodecVP9, av.CodecAV1, av.CodecMJPEG},
			Flags:      ports.FormatGlobalHeader | ports.FormatTSNonStrict,
			New:        mkvmuxer.NewMatroska,
		},
		{
			Name:       "webm",
			LongName:   "WebM",
			Extensions: []string{"webm"},
			VideoCodec: av.CodecVP9,
			Codecs:     []av.CodecID{av.CodecVP8, av.CodecVP9, av.CodecAV1},
			Flags:      ports.FormatGlobalHeader | ports.FormatTSNonStrict,
			New:        mkvmuxer.NewWebM,
		},
		{
			Name:       "mpegts",
			LongName:   "MPEG-TS (MPEG-2 Transport Stream)",
			Extensions: []string{"ts", "m2t", "mts"},
			VideoCodec: av.CodecH264,
			Codecs:     []av.CodecID{av.CodecH264},
			New:        tsmuxer.New,
		},
		{
			Name:       "fmp4",
			LongName:   "fragmented MP4 segments",
			Extensions: []string{"m4s", "cmfv"},
			VideoCodec: av.CodecH264,
			Codecs:     []av.CodecID{av.CodecH264, av.CodecAV1, av.CodecMJPEG},
			Flags:      ports.FormatGlobalHeader,
			New:        fmp4muxer.New,
		},
		{
			Name:       "avi",
			LongName:   "AVI (Audio Video Interleaved)",
			Extensions: []string{"avi"},
			VideoCodec: av.CodecMJPEG,
			Codecs:     []av.CodecID{av.CodecMJPEG},
			Flags:      ports.FormatNoFile,
			New:        avimuxer.New,
		},
		{
			Name:       "yuv4mpegpipe",
			LongName:   "YUV4MPEG pipe",
			Extensions: []string{"y4m"},
			VideoCodec: av.CodecRawVideo,
			Codecs:     []av.CodecID{av.CodecRawVideo},
			New:        y4mmuxer.New,
		},
		{
			Name:       "image2",
			LongName:   "image2 sequence",
			Extensions: []string{"png", "jpg", "jpeg"},
			VideoCodec: av.CodecPNG,
			CodecByExtension: map[string]av.CodecID{
				"jpg":  av.CodecMJPEG,
				"jpeg": av.CodecMJPEG,
			},
			Codecs:  []av.CodecID{av.CodecPNG, av.CodecMJPEG},
			Accepts: image2muxer.HasPattern,
			Flags:   ports.FormatNoFile,
			New:     image2muxer.New,
		},
		{
			Name:       "h264",
			LongName:   "raw H.264 video",
			Extensions: []string{"h264", "264"},
			VideoCodec: av.CodecH264,
			Codecs:     []av.CodecID{av.CodecH264},
			New:        rawmuxer.NewH264,
		},
		{
			Name:       "ivf",
			LongName:   "On2 IVF",
			Extensions: []string{"ivf"},
			VideoCodec: av.CodecVP8,
			Codecs:     []av.CodecID{av.CodecVP8, av.CodecVP9, av.CodecAV1},
			New:        rawmuxer.NewIVF,
		},
	} {
		r.RegisterFormat(f)
	}
	return r
}
