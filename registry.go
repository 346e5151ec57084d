// SPDX-License-Identifier: EPL-2.0

package audpass

import (
	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/formats/aiff"
	"github.com/ik5/audpass/formats/mp3"
	"github.com/ik5/audpass/formats/vorbis"
	"github.com/ik5/audpass/formats/wav"
)

// NewRegistry returns a registry holding every bundled decoder, keyed by the
// file extensions they handle.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	return reg
}
