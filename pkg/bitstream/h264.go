// Package bitstream holds the small amount of elementary-stream parsing the
// muxers need: Annex B framing, parameter-set discovery and keyframe tests.
package bitstream

import "errors"

// H.264 NAL unit types used by the muxers.
const (
	NALSliceNonIDR = 1
	NALSliceIDR    = 5
	NALSEI         = 6
	NALSPS         = 7
	NALPPS         = 8
	NALAUD         = 9
)

var (
	// ErrNoSPS is returned when an access unit carries no sequence parameter set.
	ErrNoSPS = errors.New("bitstream: SPS not found")
	// ErrNoPPS is returned when an access unit carries no picture parameter set.
	ErrNoPPS = errors.New("bitstream: PPS not found")
)

var startCode = []byte{0, 0, 0, 1}

// NALType returns the nal_unit_type of a NAL unit without start code.
func NALType(nalu []byte) int {
	if len(nalu) == 0 {
		return -1
	}
	return int(nalu[0] & 0x1F)
}

// SplitAnnexB splits an Annex B byte stream into NAL units.
func SplitAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := 0
	i := 0

	for i < len(data) {
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 {
			scLen := 0
			if data[i+2] == 1 {
				scLen = 3
			} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				scLen = 4
			}

			if scLen > 0 {
				if i > start {
					nalus = append(nalus, data[start:i])
				}
				i += scLen
				start = i
				continue
			}
		}
		i++
	}

	if start < len(data) {
		nalus = append(nalus, data[start:])
	}
	return nalus
}

// JoinAnnexB concatenates NAL units with 4-byte start codes.
func JoinAnnexB(nalus [][]byte) []byte {
	size := 0
	for _, n := range nalus {
		size += len(startCode) + len(n)
	}
	out := make([]byte, 0, size)
	for _, n := range nalus {
		out = append(out, startCode...)
		out = append(out, n...)
	}
	return out
}

// AnnexBToAVCC rewrites an access unit with 4-byte length prefixes.
// Parameter sets and delimiters are dropped when stripConfig is set, since
// they then live in the sample description.
func AnnexBToAVCC(data []byte, stripConfig bool) []byte {
	nalus := SplitAnnexB(data)
	out := make([]byte, 0, len(data)+4*len(nalus))
	for _, n := range nalus {
		if len(n) == 0 {
			continue
		}
		if stripConfig {
			switch NALType(n) {
			case NALSPS, NALPPS, NALAUD:
				continue
			}
		}
		l := len(n)
		out = append(out, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
		out = append(out, n...)
	}
	return out
}

// ParameterSets returns the first SPS and PPS found in an Annex B access unit.
func ParameterSets(au []byte) (sps, pps []byte, err error) {
	for _, n := range SplitAnnexB(au) {
		switch NALType(n) {
		case NALSPS:
			if sps == nil {
				sps = append([]byte(nil), n...)
			}
		case NALPPS:
			if pps == nil {
				pps = append([]byte(nil), n...)
			}
		}
	}
	if sps == nil {
		return nil, nil, ErrNoSPS
	}
	if pps == nil {
		return nil, nil, ErrNoPPS
	}
	return sps, pps, nil
}

// IsH264Keyframe reports whether the access unit contains an IDR slice.
func IsH264Keyframe(au []byte) bool {
	for _, n := range SplitAnnexB(au) {
		if NALType(n) == NALSliceIDR {
			return true
		}
	}
	return false
}

// IsVCL reports whether the NAL unit carries slice data.
func IsVCL(nalu []byte) bool {
	t := NALType(nalu)
	return t >= NALSliceNonIDR && t <= NALSliceIDR
}

// FirstSliceInPicture reports whether a slice NAL starts a new picture,
// i.e. its first_mb_in_slice is zero.
func FirstSliceInPicture(nalu []byte) bool {
	if !IsVCL(nalu) || len(nalu) < 2 {
		return false
	}
	// ue(v) encodes zero as a single set bit.
	return nalu[1]&0x80 != 0
}

// StartsAccessUnit reports whether nalu opens a new access unit when the
// current unit already holds a slice.
func StartsAccessUnit(nalu []byte) bool {
	switch NALType(nalu) {
	case NALAUD, NALSPS, NALPPS, NALSEI:
		return true
	}
	return FirstSliceInPicture(nalu)
}

// ConfigSource returns SPS and PPS from out-of-band extradata when present,
// otherwise from the in-band access unit.
func ConfigSource(extradata, au []byte) (sps, pps []byte, err error) {
	if len(extradata) > 0 {
		if sps, pps, err = ParameterSets(extradata); err == nil {
			return sps, pps, nil
		}
	}
	return ParameterSets(au)
}
