package y4mmuxer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

func TestMuxer_Output(t *testing.T) {
	var buf bytes.Buffer
	m, err := New(ports.MuxerConfig{Output: &buf})
	require.NoError(t, err)

	st := &ports.Stream{
		TimeBase:     av.R(1001, 30000),
		AvgFrameRate: av.R(30000, 1001),
		Codecpar:     ports.CodecParameters{CodecID: av.CodecRawVideo, Width: 4, Height: 2, PixelFormat: av.PixFmtYUV420P},
	}
	require.NoError(t, m.WriteHeader(st))

	frame := make([]byte, 4*2+2*2*1)
	require.NoError(t, m.WritePacket(&av.Packet{Data: frame}))
	require.NoError(t, m.WritePacket(&av.Packet{Data: frame}))
	require.NoError(t, m.WriteTrailer())

	out := buf.String()
	header, rest, ok := strings.Cut(out, "\n")
	require.True(t, ok)
	assert.Equal(t, "YUV4MPEG2 W4 H2 F30000:1001 Ip A1:1 C420jpeg", header)
	assert.Equal(t, 2, strings.Count(rest, "FRAME\n"))
	assert.Len(t, rest, 2*(6+len(frame)))
}

func TestMuxer_WrongFrameSize(t *testing.T) {
	var buf bytes.Buffer
	m, err := New(ports.MuxerConfig{Output: &buf})
	require.NoError(t, err)

	st := &ports.Stream{
		TimeBase: av.R(1, 25),
		Codecpar: ports.CodecParameters{CodecID: av.CodecRawVideo, Width: 4, Height: 2, PixelFormat: av.PixFmtGray8},
	}
	require.NoError(t, m.WriteHeader(st))
	assert.Error(t, m.WritePacket(&av.Packet{Data: []byte{1, 2, 3}}))
}

func TestMuxer_RejectsRGB(t *testing.T) {
	var buf bytes.Buffer
	m, err := New(ports.MuxerConfig{Output: &buf})
	require.NoError(t, err)

	st := &ports.Stream{Codecpar: ports.CodecParameters{CodecID: av.CodecRawVideo, PixelFormat: av.PixFmtRGB24}}
	assert.Error(t, m.WriteHeader(st))
}

func TestColorspace(t *testing.T) {
	cs, ok := Colorspace(av.PixFmtGray8)
	assert.True(t, ok)
	assert.Equal(t, "mono", cs)
}
