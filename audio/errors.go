// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize    = errors.New("dst size must be multiple of channels")
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrInvalidChannels   = errors.New("invalid channel count")
	ErrUnknownEngine     = errors.New("unknown converter engine")
	ErrUnknownExtension  = errors.New("no decoder for file extension")
	ErrUnknownVariant    = errors.New("unknown sample variant")
	ErrUnknownQuality    = errors.New("unknown quality preset")
)
