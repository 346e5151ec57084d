// SPDX-License-Identifier: EPL-2.0

package passthrough

import (
	"errors"
	"strconv"

	"github.com/ik5/audpass/audio"
)

// ErrStreamStopped is the cause of a KindStreamRuntime failure raised when a
// capture device stops without being asked to.
var ErrStreamStopped = errors.New("stream stopped unexpectedly")

// ErrorKind classifies session failures.
type ErrorKind int

const (
	KindDeviceNotFound ErrorKind = iota + 1
	KindUnsupportedFormat
	KindStreamOpen
	KindStreamRuntime
)

func (k ErrorKind) String() string {
	switch k {
	case KindDeviceNotFound:
		return "device not found"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindStreamOpen:
		return "stream open"
	case KindStreamRuntime:
		return "stream runtime"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is a classified session failure. The Supervisor retries every
// *Error; anything else ends Run.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// openError classifies a failure to open or configure a stream.
func openError(op string, err error) *Error {
	if errors.Is(err, audio.ErrUnsupportedFormat) {
		return newError(KindUnsupportedFormat, op, err)
	}
	return newError(KindStreamOpen, op, err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
