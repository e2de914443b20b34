package bitstream

// AV1 OBU types.
const (
	OBUSequenceHeader    = 1
	OBUTemporalDelimiter = 2
	OBUFrameHeader       = 3
	OBUFrame             = 6
)

// OBU is one open bitstream unit inside a temporal unit.
type OBU struct {
	Type int
	// Raw is the complete OBU including its header.
	Raw []byte
}

// SplitOBUs walks a low-overhead AV1 bitstream. Parsing stops at the first
// malformed unit.
func SplitOBUs(data []byte) []OBU {
	var obus []OBU
	off := 0
	for off < len(data) {
		start := off
		header := data[off]
		obuType := int(header>>3) & 0x0F
		hasExt := header&0x04 != 0
		hasSize := header&0x02 != 0
		off++
		if hasExt {
			off++
		}
		if off > len(data) {
			break
		}

		size := len(data) - off
		if hasSize {
			var n int
			size, n = readLeb128(data[off:])
			if n == 0 {
				break
			}
			off += n
		}
		end := off + size
		if end > len(data) || size < 0 {
			break
		}
		obus = append(obus, OBU{Type: obuType, Raw: data[start:end]})
		off = end
	}
	return obus
}

// SequenceHeader returns the first sequence header OBU, header included.
func SequenceHeader(data []byte) []byte {
	for _, o := range SplitOBUs(data) {
		if o.Type == OBUSequenceHeader {
			return o.Raw
		}
	}
	return nil
}

// IsAV1Keyframe treats a temporal unit carrying a sequence header as a
// random access point, which is how libaom emits key frames.
func IsAV1Keyframe(tu []byte) bool {
	return SequenceHeader(tu) != nil
}

// readLeb128 returns the decoded value and the number of bytes consumed,
// or 0 bytes when the input ends early.
func readLeb128(data []byte) (int, int) {
	value := 0
	for i := 0; i < 8 && i < len(data); i++ {
		b := data[i]
		value |= int(b&0x7F) << (i * 7)
		if b&0x80 == 0 {
			return value, i + 1
		}
	}
	return 0, 0
}
