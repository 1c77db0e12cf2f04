// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package bus

import (
	"errors"
	"fmt"
)

var (
	// ErrBusClosed matches errors returned for calls which were pending
	// when their epoch ended.
	ErrBusClosed = errors.New("bus closed")

	// ErrShutdown is returned by calls and by Listen once the Listener has
	// been shut down. It is not retried.
	ErrShutdown = errors.New("bus shut down")

	// ErrListenerBusy is returned by Listen if the Listener is already
	// serving an epoch.
	ErrListenerBusy = errors.New("bus listener is already listening")
)

// ClosedError is returned for a call attempt whose epoch ended before a
// response arrived.
type ClosedError struct {
	// Epoch that the attempt was issued on.
	Epoch uint64

	// Sent reports whether the request was written to the sink before the
	// epoch ended. If so, the peer may have acted on it.
	Sent bool
}

func (e *ClosedError) Error() string {
	if e.Sent {
		return fmt.Sprintf("bus closed during epoch %d after request was sent", e.Epoch)
	}
	return fmt.Sprintf("bus closed during epoch %d before request was sent", e.Epoch)
}

// Is reports whether target is ErrBusClosed.
func (e *ClosedError) Is(target error) bool {
	return target == ErrBusClosed
}

// SinkError is returned when the sink rejected a request.
type SinkError struct {
	Ref uint64
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("failed to send request %d to sink: %v", e.Ref, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// EncodeError is returned when a request could not be encoded.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode request: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError is returned when a response arrived but could not be decoded.
type DecodeError struct {
	Ref uint64
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response %d: %v", e.Ref, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
