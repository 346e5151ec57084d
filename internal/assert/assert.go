// SPDX-License-Identifier: EPL-2.0

// Package assert holds small test assertions shared across packages.
package assert

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

const timeout = 5 * time.Second

// ChanWritten returns the value written to chan c or times out.
func ChanWritten[T any](t testing.TB, c <-chan T) T {
	t.Helper()
	var v T
	select {
	case v = <-c:
	case <-time.After(timeout):
		t.Fatal("timeout waiting for chan read")
	}
	return v
}

// ChanWrittenWithVal asserts the chan c was written with a value that
// DeepEquals want.
func ChanWrittenWithVal[T any](t testing.TB, c <-chan T, want T) T {
	t.Helper()
	got := ChanWritten(t, c)
	DeepEqual(t, got, want)
	return got
}

// ChanNotWritten asserts that the chan is not written at least until the passed
// timeout value.
func ChanNotWritten[T any](t testing.TB, c <-chan T, timeout time.Duration) {
	t.Helper()
	select {
	case v := <-c:
		t.Fatalf("channel was written with value %v", v)
	case <-time.After(timeout):
	}
}

// ChanClosed asserts c is closed before the timeout.
func ChanClosed[T any](t testing.TB, c <-chan T) {
	t.Helper()
	select {
	case _, ok := <-c:
		if ok {
			t.Fatal("channel was written instead of closed")
		}
	case <-time.After(timeout):
		t.Fatal("timeout waiting for chan close")
	}
}

// NilErr asserts err is nil.
func NilErr(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ErrorIs asserts that errors.Is(got, want).
func ErrorIs(t testing.TB, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("unexpected error; got %v, want %v", got, want)
	}
}

// DeepEqual asserts got and want are deeply equal.
func DeepEqual[T any](t testing.TB, got, want T) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected values; got %v, want %v", got, want)
	}
}
