package videowriter

import (
	"encoding/json"

	"github.com/user/vidwriter/pkg/av"
)

// streamDump is the JSON form of the output description saved to the debug
// sink.
type streamDump struct {
	Filename      string `json:"filename"`
	Format        string `json:"format"`
	Encoder       string `json:"encoder"`
	Codec         string `json:"codec"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	PixelFormat   string `json:"pix_fmt"`
	InputFormat   string `json:"input_pix_fmt"`
	TimeBase      string `json:"time_base"`
	FrameRate     string `json:"avg_frame_rate"`
	GlobalHeader  bool   `json:"global_header"`
	ExtradataSize int    `json:"extradata_size"`
	Options       string `json:"options,omitempty"`
}

// dumpFormat logs the output description and saves it to the debug sink.
func (s *session) dumpFormat() {
	cp := s.stream.Codecpar
	s.logger.Debug("Output #0, %s, to '%s':", s.format.Name, s.filename)
	s.logger.Debug("  Stream #0:%d: Video: %s (%s), %s, %dx%d, %s fps, %s tbn",
		s.stream.Index, cp.CodecID, s.codec.Name, cp.PixelFormat, cp.Width, cp.Height,
		s.stream.AvgFrameRate, s.stream.TimeBase)

	if !s.debug.Enabled() {
		return
	}
	data, err := json.MarshalIndent(streamDump{
		Filename:      s.filename,
		Format:        s.format.Name,
		Encoder:       s.codec.Name,
		Codec:         cp.CodecID.String(),
		Width:         cp.Width,
		Height:        cp.Height,
		PixelFormat:   cp.PixelFormat.String(),
		InputFormat:   s.input.String(),
		TimeBase:      s.stream.TimeBase.String(),
		FrameRate:     s.stream.AvgFrameRate.String(),
		GlobalHeader:  s.encCfg.GlobalHeader,
		ExtradataSize: len(cp.Extradata),
		Options:       s.opts.String(),
	}, "", "  ")
	if err != nil {
		s.logger.Warn("Failed to encode stream info: %v", err)
		return
	}
	if err := s.debug.SaveStreamInfo(data); err != nil {
		s.logger.Warn("Failed to save stream info: %v", err)
	}
}

// logPacket logs a packet's timing in the stream time base.
func (s *session) logPacket(pkt *av.Packet) {
	tb := s.stream.TimeBase
	s.logger.Debug("pts:%s pts_time:%s dts:%s dts_time:%s duration:%s duration_time:%s stream_index:%d",
		av.TSString(pkt.PTS), av.TSTimeString(pkt.PTS, tb),
		av.TSString(pkt.DTS), av.TSTimeString(pkt.DTS, tb),
		av.TSString(pkt.Duration), av.TSTimeString(pkt.Duration, tb),
		pkt.StreamIndex)
}
