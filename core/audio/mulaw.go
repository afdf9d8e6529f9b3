package audio

// mu-law codec for 8 kHz phone audio. Decoding uses a precomputed table,
// encoding follows G.711 segment encoding with the standard 0x84 bias.

const ulawBias = 0x84

var ulawDecodeTable [256]int16

func init() {
	for i := range ulawDecodeTable {
		u := ^byte(i)
		sign := u & 0x80
		exponent := (u >> 4) & 0x07
		mantissa := u & 0x0F
		sample := (int32(mantissa)<<3 + ulawBias) << exponent
		sample -= ulawBias
		if sign != 0 {
			sample = -sample
		}
		ulawDecodeTable[i] = int16(sample)
	}
}

// DecodeUlaw converts a single mu-law byte to a 16-bit linear PCM sample.
func DecodeUlaw(u byte) int16 {
	return ulawDecodeTable[u]
}

// EncodeUlaw converts a 16-bit linear PCM sample to a mu-law byte.
func EncodeUlaw(pcm int16) byte {
	var sign byte
	sample := int32(pcm)
	if sample < 0 {
		sign = 0x80
		sample = -sample
	}
	if sample > 0x7FFF {
		sample = 0x7FFF
	}
	sample += ulawBias

	exponent := int32(7)
	for mask := int32(0x4000); exponent > 0 && sample&mask == 0; mask >>= 1 {
		exponent--
	}
	mantissa := byte((sample >> (uint(exponent) + 3)) & 0x0F)
	return ^(sign | byte(exponent)<<4 | mantissa)
}

// MixUlaw mixes two mu-law buffers sample-by-sample into one buffer of
// length max(len(a), len(b)). Samples beyond the shorter buffer are treated
// as silence. The sum is clamped to the 16-bit range before re-encoding.
func MixUlaw(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := range out {
		var sa, sb int32
		if i < len(a) {
			sa = int32(DecodeUlaw(a[i]))
		}
		if i < len(b) {
			sb = int32(DecodeUlaw(b[i]))
		}
		sum := sa + sb
		if sum > 32767 {
			sum = 32767
		} else if sum < -32768 {
			sum = -32768
		}
		out[i] = EncodeUlaw(int16(sum))
	}
	return out
}
