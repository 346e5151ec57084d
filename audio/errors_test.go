package audio

import (
	"errors"
	"testing"
)

func TestErrInvalidDstSize(t *testing.T) {
	t.Parallel()

	if ErrInvalidDstSize == nil {
		t.Fatal("ErrInvalidDstSize is nil")
	}

	expectedMsg := "dst size must be multiple of channels"
	if ErrInvalidDstSize.Error() != expectedMsg {
		t.Errorf("ErrInvalidDstSize.Error() = %q, want %q", ErrInvalidDstSize.Error(), expectedMsg)
	}
}

func TestErrors_Distinct(t *testing.T) {
	t.Parallel()

	errs := []error{
		ErrInvalidDstSize,
		ErrUnsupportedFormat,
		ErrInvalidSampleRate,
		ErrInvalidChannels,
		ErrUnknownEngine,
		ErrUnknownExtension,
		ErrUnknownVariant,
		ErrUnknownQuality,
	}

	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("errors.Is(%v, %v) = true, want false", a, b)
			}
		}
	}
}

func TestErrUnsupportedFormat_Wrapped(t *testing.T) {
	t.Parallel()

	f := SampleFormat{SampleRate: 44100, BitsPerSample: 12, Encoding: EncodingPCM, Channels: 1}
	_, err := f.Variant()
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Variant() error = %v, want ErrUnsupportedFormat", err)
	}
	if err.Error() == ErrUnsupportedFormat.Error() {
		t.Error("Variant() error carries no detail about the format")
	}
}
