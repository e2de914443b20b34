package ports

// DebugSink receives diagnostic dumps produced while writing a video: the
// stream description after the header is written and every muxed packet.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveStreamInfo saves the output stream description as JSON.
	SaveStreamInfo(data []byte) error

	// SavePacket saves the payload of the index-th muxed packet.
	SavePacket(index int, data []byte) error
}
