package mocks

import (
	"sync"

	"github.com/user/vidwriter/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	StreamInfo []byte
	Packets    map[int][]byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Packets: make(map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveStreamInfo(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamInfo = data
	return nil
}

func (m *DebugSink) SavePacket(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Packets[index] = append([]byte(nil), data...)
	return nil
}

// PacketCount returns the number of saved packets.
func (m *DebugSink) PacketCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Packets)
}

var _ ports.DebugSink = (*DebugSink)(nil)
