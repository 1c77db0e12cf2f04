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
	"errors"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	opentracinglog "github.com/opentracing/opentracing-go/log"
	"go.uber.org/netfn"
	"go.uber.org/netfn/encoding"
	"go.uber.org/zap"
)

var _ netfn.Transport = (*Transport)(nil)

// Transport issues calls over whichever connection its Listener is
// currently serving. It is safe for concurrent use.
type Transport struct {
	codec    encoding.Codec
	refs     chan<- chan<- grant
	sends    chan<- *sendRequest
	shutdown <-chan struct{}

	logger  *zap.Logger
	tracer  opentracing.Tracer
	metrics *metrics

	semantics   DeliverySemantics
	maxAttempts int
}

// Call sends request to the named service and decodes the reply into
// response, which must be a pointer.
//
// Attempts interrupted by the end of an epoch are retried on the next
// epoch according to the delivery semantics of the bus. Call returns when
// a reply arrives, a non-retryable error occurs, or ctx is done.
func (t *Transport) Call(ctx context.Context, service string, request, response interface{}) error {
	t.metrics.calls.Inc(1)

	for attempt := 1; ; attempt++ {
		err := t.attempt(ctx, attempt, service, request, response)

		var closed *ClosedError
		if !errors.As(err, &closed) {
			return err
		}
		if closed.Sent && t.semantics == AtMostOnce {
			return err
		}
		if t.maxAttempts > 0 && attempt >= t.maxAttempts {
			return err
		}

		t.metrics.retries.Inc(1)
		t.logger.Debug("retrying call after bus closed",
			zap.String("service", service),
			zap.Int("attempt", attempt),
			zap.Uint64("epoch", closed.Epoch),
			zap.Bool("sent", closed.Sent))
	}
}

func (t *Transport) attempt(ctx context.Context, attempt int, service string, request, response interface{}) (err error) {
	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, t.tracer, "netfn.call")
	span.SetTag("service", service)
	span.SetTag("attempt", attempt)
	defer func() {
		if err != nil {
			ext.Error.Set(span, true)
			span.LogFields(opentracinglog.Error(err))
		}
		span.Finish()
	}()

	g, err := t.allocate(ctx)
	if err != nil {
		return err
	}
	span.SetTag("ref", g.ref)
	span.SetTag("epoch", g.epoch)

	msg, err := t.codec.Encode(encoding.TunnelRequest{
		Ref: g.ref,
		Payload: encoding.CallRequest{
			Service: service,
			Call:    request,
		},
	})
	if err != nil {
		return &EncodeError{Err: err}
	}

	res, err := t.send(ctx, g, msg)
	if err != nil {
		return err
	}
	if res.err != nil {
		return res.err
	}

	reply := encoding.TunnelResponse{Payload: response}
	if err := t.codec.Decode(res.msg, &reply); err != nil {
		t.metrics.decodeErrors.Inc(1)
		return &DecodeError{Ref: g.ref, Err: err}
	}
	if reply.Error != nil {
		return reply.Error
	}
	return nil
}

// allocate asks the Listener for a correlation ID. It waits for an epoch
// to start if none is running.
func (t *Transport) allocate(ctx context.Context) (grant, error) {
	reply := make(chan grant, 1)
	select {
	case t.refs <- reply:
	case <-t.shutdown:
		return grant{}, ErrShutdown
	case <-ctx.Done():
		return grant{}, ctx.Err()
	}

	// The request may sit in the queue until the next epoch picks it up.
	select {
	case g := <-reply:
		return g, nil
	case <-t.shutdown:
		select {
		case g := <-reply:
			return g, nil
		default:
			return grant{}, ErrShutdown
		}
	case <-ctx.Done():
		return grant{}, ctx.Err()
	}
}

// send hands msg to the Listener and waits for its result.
func (t *Transport) send(ctx context.Context, g grant, msg encoding.Message) (result, error) {
	req := &sendRequest{
		ref:    g.ref,
		epoch:  g.epoch,
		msg:    msg,
		waiter: make(chan result, 1),
	}

	select {
	case t.sends <- req:
	case <-t.shutdown:
		return result{}, ErrShutdown
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	select {
	case res := <-req.waiter:
		return res, nil
	case <-t.shutdown:
		// The epoch may still be draining. Prefer its verdict if it is
		// already there.
		select {
		case res := <-req.waiter:
			return res, nil
		default:
			return result{}, ErrShutdown
		}
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}
