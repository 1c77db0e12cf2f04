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
	"go.uber.org/netfn/encoding"
)

// grant is the reply to an ID request.
type grant struct {
	ref   uint64
	epoch uint64
}

// sendRequest asks the Listener to write msg and to deliver its response to
// waiter.
type sendRequest struct {
	ref    uint64
	epoch  uint64
	msg    encoding.Message
	waiter chan result
}

// New builds a Transport and the Listener that serves it.
//
// The Transport may be used before Listen is called; calls wait until an
// epoch starts or their context ends.
func New(codec encoding.Codec, opts ...Option) (*Transport, *Listener) {
	options := newOptions(opts)
	m := newMetrics(options.scope)

	refs := make(chan chan<- grant, options.bufferSize)
	sends := make(chan *sendRequest, options.bufferSize)
	shutdown := make(chan struct{})

	t := &Transport{
		codec:       codec,
		refs:        refs,
		sends:       sends,
		shutdown:    shutdown,
		logger:      options.logger,
		tracer:      options.tracer,
		metrics:     m,
		semantics:   options.semantics,
		maxAttempts: options.maxAttempts,
	}
	l := &Listener{
		codec:    codec,
		refs:     refs,
		sends:    sends,
		shutdown: shutdown,
		logger:   options.logger,
		metrics:  m,
	}
	return t, l
}
