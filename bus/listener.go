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
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/netfn/encoding"
	"go.uber.org/zap"
)

// Listener serves the calls of a Transport over successive connections.
type Listener struct {
	codec   encoding.Codec
	refs    <-chan chan<- grant
	sends   <-chan *sendRequest
	logger  *zap.Logger
	metrics *metrics

	listening atomic.Bool
	epochs    atomic.Uint64

	shutdown     chan struct{}
	shutdownOnce sync.Once

	// mu guards closing, the close signal of the running epoch.
	mu      sync.Mutex
	closing chan struct{}
}

// Closer ends the running epoch of a Listener.
type Closer struct {
	l *Listener
}

// Closer returns a handle that ends the running epoch of this Listener.
func (l *Listener) Closer() *Closer {
	return &Closer{l: l}
}

// Close asks the running epoch to end. It does not wait for it to end.
// Close is a no-op if no epoch is running or the epoch is already closing.
func (c *Closer) Close() {
	c.l.mu.Lock()
	defer c.l.mu.Unlock()

	if c.l.closing == nil {
		return
	}
	select {
	case <-c.l.closing:
	default:
		close(c.l.closing)
	}
}

// Shutdown permanently stops the Listener. The running epoch ends, later
// calls to Listen return ErrShutdown, and calls waiting on the Transport
// fail with ErrShutdown instead of waiting for another epoch.
func (l *Listener) Shutdown() {
	l.shutdownOnce.Do(func() {
		close(l.shutdown)
	})
}

// Epochs returns the number of epochs this Listener has started.
func (l *Listener) Epochs() uint64 {
	return l.epochs.Load()
}

// Listen runs one epoch over the given connection: it writes calls to sink
// and matches messages from stream with pending calls.
//
// Listen blocks until the Closer is used, ctx is done, stream is closed, or
// the Listener is shut down.
// It then fails every pending call with a *ClosedError and closes the sink.
// Listen must not be called again until it has returned; a concurrent call
// returns ErrListenerBusy.
func (l *Listener) Listen(ctx context.Context, sink Sink, stream <-chan encoding.Message) error {
	if !l.listening.CompareAndSwap(false, true) {
		return ErrListenerBusy
	}
	defer l.listening.Store(false)

	select {
	case <-l.shutdown:
		_ = sink.Close()
		return ErrShutdown
	default:
	}

	closing := make(chan struct{})
	l.mu.Lock()
	l.closing = closing
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.closing = nil
		l.mu.Unlock()
	}()

	e := &epoch{
		Listener: l,
		id:       l.epochs.Inc(),
		registry: newRegistry(),
		sink:     sink,
	}
	e.logger = l.logger.With(zap.Uint64("epoch", e.id))
	l.metrics.epochs.Inc(1)

	e.logger.Debug("bus epoch started")
	reason := e.run(ctx, closing, stream)
	e.terminate(reason)
	return nil
}

// epoch is the state owned by a single Listen call.
type epoch struct {
	*Listener

	id       uint64
	registry *registry
	sink     Sink
	logger   *zap.Logger
}

func (e *epoch) run(ctx context.Context, closing <-chan struct{}, stream <-chan encoding.Message) string {
	for {
		select {
		case reply := <-e.refs:
			reply <- grant{ref: e.registry.allocate(), epoch: e.id}

		case req := <-e.sends:
			e.send(ctx, req)

		case msg, ok := <-stream:
			if !ok {
				return "stream ended"
			}
			e.receive(msg)

		case <-closing:
			return "closed"

		case <-e.shutdown:
			return "shut down"

		case <-ctx.Done():
			return "context done"
		}
	}
}

func (e *epoch) send(ctx context.Context, req *sendRequest) {
	if req.epoch != e.id {
		// The ID was allocated by an earlier epoch and may collide with
		// one of ours.
		req.waiter <- result{err: &ClosedError{Epoch: req.epoch}}
		return
	}

	if err := e.sink.Send(ctx, req.msg); err != nil {
		e.metrics.sinkErrors.Inc(1)
		e.logger.Warn("failed to write request to sink",
			zap.Uint64("ref", req.ref), zap.Error(err))
		req.waiter <- result{err: &SinkError{Ref: req.ref, Err: err}}
		return
	}

	if err := e.registry.register(req.ref, req.waiter); err != nil {
		e.logger.Error("request was sent with a pending ref",
			zap.Uint64("ref", req.ref), zap.Error(err))
		req.waiter <- result{err: err}
		return
	}
	e.metrics.pending.Update(float64(e.registry.len()))
}

func (e *epoch) receive(msg encoding.Message) {
	refs, err := e.codec.PartialDecode(msg)
	if err != nil {
		e.metrics.decodeErrors.Inc(1)
		e.logger.Warn("dropping inbound message with unreadable envelope", zap.Error(err))
		return
	}

	switch {
	case refs.Ref != nil:
		if !e.registry.resolve(*refs.Ref, result{msg: msg}) {
			e.metrics.unmatched.Inc(1)
			e.logger.Warn("dropping response for unknown ref", zap.Uint64("ref", *refs.Ref))
			return
		}
		e.metrics.pending.Update(float64(e.registry.len()))

	case refs.Handle != nil:
		e.metrics.unmatched.Inc(1)
		e.logger.Debug("dropping message for unknown stream handle", zap.Uint64("handle", *refs.Handle))

	default:
		e.metrics.unmatched.Inc(1)
		e.logger.Warn("dropping inbound message without ref or handle")
	}
}

func (e *epoch) terminate(reason string) {
	var queued int
	for done := false; !done; {
		select {
		case req := <-e.sends:
			queued++
			req.waiter <- result{err: &ClosedError{Epoch: req.epoch}}
		default:
			done = true
		}
	}

	drained := e.registry.drain(&ClosedError{Epoch: e.id, Sent: true})
	e.metrics.drained.Inc(int64(drained + queued))
	e.metrics.pending.Update(0)

	if err := e.sink.Close(); err != nil {
		e.logger.Info("failed to close sink", zap.Error(err))
	}

	e.logger.Info("bus epoch ended",
		zap.String("reason", reason),
		zap.Int("pending", drained),
		zap.Int("queued", queued))
}
