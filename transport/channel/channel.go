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

package channel

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/netfn"
	"go.uber.org/netfn/dispatch"
	"go.uber.org/netfn/encoding"
	"go.uber.org/zap"
)

var (
	// ErrStopped is returned by calls made after the Listener stopped
	// listening.
	ErrStopped = errors.New("channel listener stopped")

	// ErrListenerBusy is returned by Listen when the Listener is already
	// listening.
	ErrListenerBusy = errors.New("channel listener is already listening")
)

var _ netfn.Transport = (*Transport)(nil)

type call struct {
	ctx     context.Context
	request interface{}
	reply   chan<- reply
}

type reply struct {
	response interface{}
	err      error
}

// Transport hands calls to its Listener. It is safe for concurrent use.
type Transport struct {
	name    string
	calls   chan<- *call
	stopped <-chan struct{}
}

// Listener dispatches the calls of its Transport to a service.
type Listener struct {
	service netfn.Service
	calls   <-chan *call
	logger  *zap.Logger

	listening atomic.Bool
	stopped   chan struct{}
	stopOnce  sync.Once
}

// New builds a connected Transport and Listener serving service. Up to
// bufferSize calls may be queued before callers block.
func New(service netfn.Service, bufferSize int, opts ...Option) (*Transport, *Listener) {
	options := newOptions(opts)
	calls := make(chan *call, bufferSize)
	stopped := make(chan struct{})
	t := &Transport{
		name:    service.Name(),
		calls:   calls,
		stopped: stopped,
	}
	l := &Listener{
		service: service,
		calls:   calls,
		logger:  options.logger.With(zap.String("service", service.Name())),
		stopped: stopped,
	}
	return t, l
}

// Call implements netfn.Transport#Call. response must be a pointer to the
// response union of the service.
func (t *Transport) Call(ctx context.Context, service string, request, response interface{}) error {
	if service != t.name {
		return &encoding.RemoteError{
			Code:    encoding.CodeUnknownService,
			Message: fmt.Sprintf("unknown service %q", service),
		}
	}

	replies := make(chan reply, 1)
	select {
	case t.calls <- &call{ctx: ctx, request: request, reply: replies}:
	case <-t.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case r := <-replies:
		if r.err != nil {
			return r.err
		}
		return assign(response, r.response)
	case <-t.stopped:
		select {
		case r := <-replies:
			if r.err != nil {
				return r.err
			}
			return assign(response, r.response)
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen dispatches calls until ctx is done, one at a time. Calls still
// queued when it returns fail with ErrStopped, as do later calls.
//
// A Listener listens at most once: Listen returns ErrListenerBusy if it is
// already listening and ErrStopped if it has listened before. Otherwise it
// returns ctx.Err().
func (l *Listener) Listen(ctx context.Context) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	if !l.listening.CompareAndSwap(false, true) {
		return ErrListenerBusy
	}
	defer l.listening.Store(false)
	defer l.stop()

	l.logger.Debug("channel listener started")
	for {
		select {
		case c := <-l.calls:
			l.handle(c)
		case <-ctx.Done():
			l.logger.Debug("channel listener stopped")
			return ctx.Err()
		}
	}
}

func (l *Listener) stop() {
	l.stopOnce.Do(func() {
		close(l.stopped)
	})
	for {
		select {
		case c := <-l.calls:
			c.reply <- reply{err: ErrStopped}
		default:
			return
		}
	}
}

func (l *Listener) handle(c *call) {
	if err := c.ctx.Err(); err != nil {
		// The caller has given up already.
		c.reply <- reply{err: err}
		return
	}
	response, err := dispatch.Dispatch(c.ctx, l.service, c.request)
	if err != nil {
		l.logger.Debug("call failed", zap.Error(err))
	}
	c.reply <- reply{response: response, err: err}
}

// assign stores response into the value pointed to by dst. response may be
// a value or a pointer to a value of the pointed-to type.
func assign(dst, response interface{}) error {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("response must be a non-nil pointer, got %T", dst)
	}
	target := dv.Elem()

	rv := reflect.ValueOf(response)
	if !rv.IsValid() {
		return fmt.Errorf("service returned no response for %v", target.Type())
	}
	if rv.Kind() == reflect.Ptr && rv.Type().Elem() == target.Type() {
		if rv.IsNil() {
			return fmt.Errorf("service returned a nil %v", rv.Type())
		}
		rv = rv.Elem()
	}
	if !rv.Type().AssignableTo(target.Type()) {
		return fmt.Errorf("cannot use response of type %v as %v", rv.Type(), target.Type())
	}
	target.Set(rv)
	return nil
}
