package bitstream

// IsVP8Keyframe inspects the frame tag; bit 0 clear marks a key frame.
func IsVP8Keyframe(frame []byte) bool {
	return len(frame) > 0 && frame[0]&0x01 == 0
}

// IsVP9Keyframe parses the start of the uncompressed header.
func IsVP9Keyframe(frame []byte) bool {
	if len(frame) == 0 {
		return false
	}
	br := bitReader{data: frame}
	if br.read(2) != 2 {
		return false
	}
	low := br.read(1)
	high := br.read(1)
	if high<<1|low == 3 {
		br.read(1)
	}
	if br.read(1) == 1 {
		// show_existing_frame
		return false
	}
	return br.read(1) == 0
}

type bitReader struct {
	data []byte
	pos  int
}

func (b *bitReader) read(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		byteIdx := b.pos / 8
		if byteIdx >= len(b.data) {
			return v << (n - i)
		}
		bit := int(b.data[byteIdx]>>(7-uint(b.pos%8))) & 1
		v = v<<1 | bit
		b.pos++
	}
	return v
}
