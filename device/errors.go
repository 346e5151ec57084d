// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	ErrNotFound       = errors.New("device not found")
	ErrWrongRole      = errors.New("endpoint has the wrong role")
	ErrNoAudioSupport = errors.New("audio support not compiled in")
	ErrStreamClosed   = errors.New("stream closed")
)
