// SPDX-License-Identifier: EPL-2.0

//go:build cgo && !noaudio

package device

import (
	"errors"
	"testing"

	"github.com/gen2brain/malgo"

	"github.com/ik5/audpass/audio"
)

func TestMalgoFormat_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []audio.Variant{
		audio.VariantPCM8,
		audio.VariantPCM16,
		audio.VariantPCM24,
		audio.VariantPCM32,
		audio.VariantFloat32,
	} {
		want := v.Format(48000, 2)
		mf, err := toMalgoFormat(want)
		if err != nil {
			t.Fatalf("toMalgoFormat(%s) error = %v", v, err)
		}
		if got := fromMalgoFormat(mf, 48000, 2); got != want {
			t.Errorf("%s: round trip = %+v, want %+v", v, got, want)
		}
	}
}

func TestToMalgoFormat(t *testing.T) {
	t.Parallel()

	if f, err := toMalgoFormat(audio.SampleFormat{SampleRate: 44100, Channels: 2}); err != nil || f != malgo.FormatUnknown {
		t.Errorf("device default = %v, %v, want FormatUnknown", f, err)
	}
	if _, err := toMalgoFormat(audio.VariantFloat64.Format(48000, 2)); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("float64 error = %v, want ErrUnsupportedFormat", err)
	}
	bad := audio.SampleFormat{SampleRate: 8000, BitsPerSample: 12, Encoding: audio.EncodingPCM, Channels: 1}
	if _, err := toMalgoFormat(bad); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("12-bit error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFromMalgoFormat_Unknown(t *testing.T) {
	t.Parallel()

	got := fromMalgoFormat(malgo.FormatUnknown, 44100, 1)
	if got.Encoding != 0 || got.BitsPerSample != 0 {
		t.Errorf("fromMalgoFormat(unknown) = %+v, want no encoding", got)
	}
	if _, err := got.Variant(); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("Variant() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestMalgoType(t *testing.T) {
	t.Parallel()

	if typ, err := malgoType(RoleCapture); err != nil || typ != malgo.Capture {
		t.Errorf("malgoType(capture) = %v, %v", typ, err)
	}
	if typ, err := malgoType(RoleRender); err != nil || typ != malgo.Playback {
		t.Errorf("malgoType(render) = %v, %v", typ, err)
	}
	if _, err := malgoType(Role(7)); !errors.Is(err, ErrWrongRole) {
		t.Errorf("malgoType(7) error = %v, want ErrWrongRole", err)
	}
}
