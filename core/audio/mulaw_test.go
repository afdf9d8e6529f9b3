package audio

import "testing"

func TestUlawRoundTripPreservesSign(t *testing.T) {
	for _, sample := range []int16{-20000, -1000, -8, 0, 8, 1000, 20000} {
		decoded := DecodeUlaw(EncodeUlaw(sample))
		if sample > 0 && decoded <= 0 {
			t.Fatalf("expected positive sample %d to stay positive, got %d", sample, decoded)
		}
		if sample < 0 && decoded >= 0 {
			t.Fatalf("expected negative sample %d to stay negative, got %d", sample, decoded)
		}
	}
}

func TestUlawRoundTripIsClose(t *testing.T) {
	for _, sample := range []int16{-30000, -5000, -100, 0, 100, 5000, 30000} {
		decoded := DecodeUlaw(EncodeUlaw(sample))
		diff := int32(decoded) - int32(sample)
		if diff < 0 {
			diff = -diff
		}
		// mu-law quantization error grows with amplitude; 1/16th of the
		// magnitude plus the smallest step covers every segment.
		limit := int32(sample)
		if limit < 0 {
			limit = -limit
		}
		limit = limit/16 + 64
		if diff > limit {
			t.Fatalf("round trip of %d drifted by %d (limit %d)", sample, diff, limit)
		}
	}
}

func TestMixUlawSilencePassthrough(t *testing.T) {
	silence := EncodeUlaw(0)
	a := []byte{EncodeUlaw(1200), EncodeUlaw(-800)}
	b := []byte{silence, silence}

	mixed := MixUlaw(a, b)
	if len(mixed) != 2 {
		t.Fatalf("expected 2 mixed samples, got %d", len(mixed))
	}
	for i := range mixed {
		da := DecodeUlaw(a[i])
		dm := DecodeUlaw(mixed[i])
		diff := int32(dm) - int32(da)
		if diff < 0 {
			diff = -diff
		}
		if diff > 64 {
			t.Fatalf("sample %d: mixing with silence moved %d -> %d", i, da, dm)
		}
	}
}

func TestMixUlawUnevenLengths(t *testing.T) {
	a := []byte{EncodeUlaw(500)}
	b := []byte{EncodeUlaw(500), EncodeUlaw(-500), EncodeUlaw(700)}

	mixed := MixUlaw(a, b)
	if len(mixed) != 3 {
		t.Fatalf("expected mix to cover the longer buffer, got %d samples", len(mixed))
	}
}

func TestDefaultPhoneEncoding(t *testing.T) {
	enc := DefaultPhoneEncoding()
	if enc.Encoding != "mulaw" || enc.SampleRate != 8000 || enc.Channels != 1 {
		t.Fatalf("unexpected default phone encoding: %+v", enc)
	}
	if enc.SilenceValue() != 0xFF {
		t.Fatalf("expected mu-law silence byte 0xFF, got %#x", enc.SilenceValue())
	}
	if enc.BytesPerSecond() != 8000 {
		t.Fatalf("expected 8000 bytes/s, got %d", enc.BytesPerSecond())
	}
}
