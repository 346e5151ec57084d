// SPDX-License-Identifier: EPL-2.0

package device

import "time"

const defaultPeriod = 10 * time.Millisecond

type malgoOpts struct {
	period time.Duration
}

// MalgoOption configures NewMalgoBackend.
type MalgoOption func(*malgoOpts)

// WithPeriod sets the device period, the interval between two audio
// callbacks. Values below one millisecond are ignored.
func WithPeriod(d time.Duration) MalgoOption {
	return func(o *malgoOpts) {
		if d >= time.Millisecond {
			o.period = d
		}
	}
}

func newMalgoOpts(opts []MalgoOption) malgoOpts {
	o := malgoOpts{period: defaultPeriod}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
