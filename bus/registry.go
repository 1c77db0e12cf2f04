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
	"fmt"

	"go.uber.org/netfn/encoding"
)

// result is delivered exactly once to the waiter of each call attempt.
type result struct {
	msg encoding.Message
	err error
}

// registry maps correlation IDs to the waiters of pending calls. It is
// owned by a single epoch of the Listener and is not safe for concurrent
// use.
type registry struct {
	next    uint64
	pending map[uint64]chan<- result
}

func newRegistry() *registry {
	return &registry{pending: make(map[uint64]chan<- result)}
}

// allocate returns the next correlation ID.
func (r *registry) allocate() uint64 {
	ref := r.next
	r.next++
	return ref
}

// register records a waiter for ref. Waiters must have room for one
// result.
func (r *registry) register(ref uint64, waiter chan<- result) error {
	if _, ok := r.pending[ref]; ok {
		return fmt.Errorf("ref %d is already pending", ref)
	}
	r.pending[ref] = waiter
	return nil
}

// resolve completes and forgets the call pending on ref. It returns false
// if no such call exists.
func (r *registry) resolve(ref uint64, res result) bool {
	waiter, ok := r.pending[ref]
	if !ok {
		return false
	}
	delete(r.pending, ref)
	waiter <- res
	return true
}

// drain fails every pending call with err and returns how many there were.
func (r *registry) drain(err error) int {
	n := len(r.pending)
	for ref, waiter := range r.pending {
		delete(r.pending, ref)
		waiter <- result{err: err}
	}
	return n
}

func (r *registry) len() int {
	return len(r.pending)
}
