package audio

// EncodingInfo describes the wire format of an audio stream.
type EncodingInfo struct {
	Encoding   string
	SampleRate int
	Channels   int
}

// DefaultPhoneEncoding returns the carrier-side phone audio format:
// 8-bit mu-law, 8 kHz, mono.
func DefaultPhoneEncoding() EncodingInfo {
	return EncodingInfo{Encoding: "mulaw", SampleRate: 8000, Channels: 1}
}

// SilenceValue returns the byte value representing silence for the encoding.
func (e EncodingInfo) SilenceValue() byte {
	if e.Encoding == "mulaw" {
		return 0xFF
	}
	return 0x00
}

// BytesPerSecond returns the stream byte rate for the encoding.
func (e EncodingInfo) BytesPerSecond() int {
	channels := e.Channels
	if channels == 0 {
		channels = 1
	}
	return e.SampleRate * channels
}
