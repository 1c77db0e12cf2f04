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

package bustest

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/netfn/encoding"
)

// ErrPipeClosed is returned by Send after the Pipe was closed.
var ErrPipeClosed = errors.New("pipe closed")

const _pipeBuffer = 128

// Pipe is an in-memory connection for a bus Listener. Tests play the peer:
// they read the requests the bus wrote with Requests and answer with
// Deliver.
type Pipe struct {
	requests chan encoding.Message
	messages chan encoding.Message
	closed   chan struct{}

	closeOnce sync.Once
	endOnce   sync.Once
}

// NewPipe builds a new Pipe.
func NewPipe() *Pipe {
	return &Pipe{
		requests: make(chan encoding.Message, _pipeBuffer),
		messages: make(chan encoding.Message),
		closed:   make(chan struct{}),
	}
}

// Send records msg as written by the bus.
func (p *Pipe) Send(ctx context.Context, msg encoding.Message) error {
	select {
	case <-p.closed:
		return ErrPipeClosed
	default:
	}

	select {
	case p.requests <- msg:
		return nil
	case <-p.closed:
		return ErrPipeClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the outbound half closed. It is safe to call more than once.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	return nil
}

// Closed returns a channel that is closed once the bus closed the Pipe.
func (p *Pipe) Closed() <-chan struct{} {
	return p.closed
}

// Requests returns the messages written by the bus.
func (p *Pipe) Requests() <-chan encoding.Message {
	return p.requests
}

// Messages is the inbound stream to hand to Listen.
func (p *Pipe) Messages() <-chan encoding.Message {
	return p.messages
}

// Deliver hands msg to the bus as if the peer had sent it. It blocks until
// the bus reads it or ctx is done. Deliver must not be called after
// EndStream.
func (p *Pipe) Deliver(ctx context.Context, msg encoding.Message) error {
	select {
	case p.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EndStream ends the inbound stream, as if the peer had hung up.
func (p *Pipe) EndStream() {
	p.endOnce.Do(func() {
		close(p.messages)
	})
}
