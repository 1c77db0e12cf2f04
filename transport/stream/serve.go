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

package stream

import (
	"context"
	"io"

	"go.uber.org/netfn/encoding"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler answers encoded requests. *dispatch.Handler implements it.
type Handler interface {
	Handle(ctx context.Context, msg encoding.Message) (encoding.Message, error)
}

// Serve answers the requests read from rwc with h until the stream ends or
// ctx is done, then closes rwc.
//
// Requests are handled concurrently. When the peer ends the stream, Serve
// waits for the replies of the requests already read before returning.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, h Handler, opts ...Option) error {
	options := newOptions(opts)
	conn := NewConn(rwc, opts...)
	logger := options.logger

	g, gctx := errgroup.WithContext(ctx)

loop:
	for {
		select {
		case msg, ok := <-conn.Messages():
			if !ok {
				break loop
			}
			g.Go(func() error {
				reply, err := h.Handle(gctx, msg)
				if err != nil {
					logger.Warn("dropping request without reply", zap.Error(err))
					return nil
				}
				return conn.Send(gctx, reply)
			})

		case <-gctx.Done():
			break loop
		}
	}

	// Replies still being written fail once the stream is closed.
	if ctx.Err() != nil {
		_ = conn.Close()
	}
	err := g.Wait()
	if cerr := conn.Close(); cerr != nil {
		logger.Info("failed to close stream", zap.Error(cerr))
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return conn.Err()
}
