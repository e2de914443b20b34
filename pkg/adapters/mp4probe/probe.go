// Package mp4probe inspects MP4 files produced by the writer: codec, picture
// size, timescale and the span of decode timestamps.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

var (
	// ErrNoVideoTrack is returned when the file has no video track.
	ErrNoVideoTrack = errors.New("mp4probe: no video track found")
)

// Info summarises the video track of an MP4 file.
type Info struct {
	Codec      string  `json:"codec"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Timescale  uint32  `json:"timescale"`
	Fragmented bool    `json:"fragmented"`
	Fragments  int     `json:"fragments"`
	Samples    int     `json:"samples"`
	Keyframes  int     `json:"keyframes"`
	FirstDTS   uint64  `json:"first_dts"`
	EndDTS     uint64  `json:"end_dts"`
	Duration   float64 `json:"duration_seconds"`
}

// StartSeconds returns the first decode time in seconds.
func (i *Info) StartSeconds() float64 {
	if i.Timescale == 0 {
		return 0
	}
	return float64(i.FirstDTS) / float64(i.Timescale)
}

// ProbeFile inspects the MP4 file at path.
func ProbeFile(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe inspects an MP4 stream.
func Probe(reader io.ReadSeeker) (*Info, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if mp4File.Init != nil && mp4File.Init.Moov != nil && (moov == nil || mp4File.IsFragmented()) {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return nil, ErrNoVideoTrack
	}

	trak := videoTrack(moov)
	if trak == nil {
		return nil, ErrNoVideoTrack
	}

	info := &Info{
		Codec:      codecName(trak),
		Width:      int(trak.Tkhd.Width >> 16),
		Height:     int(trak.Tkhd.Height >> 16),
		Timescale:  trak.Mdia.Mdhd.Timescale,
		Fragmented: mp4File.IsFragmented(),
	}

	if info.Fragmented {
		err = probeFragments(mp4File, moov, trak.Tkhd.TrackID, info)
	} else {
		probeProgressive(trak, info)
	}
	if err != nil {
		return nil, err
	}

	if info.Timescale > 0 {
		info.Duration = float64(info.EndDTS-info.FirstDTS) / float64(info.Timescale)
	}
	return info, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

func codecName(trak *mp4.TrakBox) string {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return "unknown"
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return "h264"
		case "av01":
			return "av1"
		case "vp09":
			return "vp9"
		case "hvc1", "hev1":
			return "hevc"
		}
	}
	return "unknown"
}

func probeFragments(mp4File *mp4.File, moov *mp4.MoovBox, trackID uint32, info *Info) error {
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	first := true
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			info.Fragments++

			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				if first {
					info.FirstDTS = s.DecodeTime
					first = false
				}
				info.Samples++
				if s.IsSync() {
					info.Keyframes++
				}
				if end := s.DecodeTime + uint64(s.Dur); end > info.EndDTS {
					info.EndDTS = end
				}
			}
		}
	}
	return nil
}

func probeProgressive(trak *mp4.TrakBox, info *Info) {
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stts != nil {
		var end uint64
		for i, n := range stbl.Stts.SampleCount {
			info.Samples += int(n)
			end += uint64(n) * uint64(stbl.Stts.SampleTimeDelta[i])
		}
		info.EndDTS = end
	}
	if stbl.Stss != nil {
		info.Keyframes = len(stbl.Stss.SampleNumber)
	} else {
		info.Keyframes = info.Samples
	}
}
