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

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/uber-go/tally"
	"go.uber.org/netfn"
	"go.uber.org/netfn/bus"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/internal/backoff"
	"go.uber.org/netfn/internal/lifecycle"
	"go.uber.org/zap"
)

var _ netfn.Transport = (*Outbound)(nil)

// Outbound makes calls over a WebSocket connection which it keeps open
// while running, reconnecting with exponential backoff whenever it drops.
//
// Calls may be made before Start; they wait for the first connection.
// Calls made after Stop fail with bus.ErrShutdown.
type Outbound struct {
	url    string
	codec  encoding.Codec
	dialer *websocket.Dialer
	header http.Header

	writeTimeout time.Duration

	transport *bus.Transport
	listener  *bus.Listener
	backoff   *backoff.Exponential

	logger      *zap.Logger
	dials       tally.Counter
	dialErrors  tally.Counter
	connections tally.Gauge

	once   *lifecycle.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// NewOutbound builds an Outbound connecting to rawURL, a ws:// or wss://
// URL.
func NewOutbound(rawURL string, codec encoding.Codec, opts ...OutboundOption) (*Outbound, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, errors.New("websocket URL scheme must be ws or wss, got " + u.Scheme)
	}

	options := newOutboundOptions(opts)
	b, err := newBackoff(options.backoff)
	if err != nil {
		return nil, err
	}

	transport, listener := bus.New(codec, options.busOptions()...)
	scope := options.scope.SubScope("websocket")
	return &Outbound{
		url:          rawURL,
		codec:        codec,
		dialer:       options.dialer,
		header:       options.header,
		writeTimeout: options.writeTimeout,
		transport:    transport,
		listener:     listener,
		backoff:      b,
		logger:       options.logger.With(zap.String("url", rawURL)),
		dials:        scope.Counter("dials"),
		dialErrors:   scope.Counter("dial_errors"),
		connections:  scope.Gauge("connected"),
		once:         lifecycle.NewOnce(),
		done:         make(chan struct{}),
	}, nil
}

func newBackoff(b Backoff) (*backoff.Exponential, error) {
	var opts []backoff.Option
	if b.Base != 0 {
		opts = append(opts, backoff.BaseJump(b.Base))
	}
	if b.Min != 0 {
		opts = append(opts, backoff.MinBackoff(b.Min))
	}
	if b.Max != 0 {
		opts = append(opts, backoff.MaxBackoff(b.Max))
	}
	return backoff.NewExponential(opts...)
}

// Call implements netfn.Transport#Call.
func (o *Outbound) Call(ctx context.Context, service string, request, response interface{}) error {
	return o.transport.Call(ctx, service, request, response)
}

// Closer returns a handle which drops the current connection. Calls in
// flight are retried on the next one.
func (o *Outbound) Closer() *bus.Closer {
	return o.listener.Closer()
}

// Connections returns the number of connections established so far.
func (o *Outbound) Connections() uint64 {
	return o.listener.Epochs()
}

// Start starts the reconnect loop. It does not wait for a connection.
func (o *Outbound) Start() error {
	return o.once.Start(o.start)
}

// Stop closes the connection, fails pending calls and stops reconnecting.
func (o *Outbound) Stop() error {
	err := o.once.Stop(o.stop)
	// Releases callers waiting for a connection that will never come, even
	// if the Outbound was never started.
	o.listener.Shutdown()
	return err
}

// IsRunning returns whether the Outbound is running.
func (o *Outbound) IsRunning() bool {
	return o.once.IsRunning()
}

func (o *Outbound) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	go o.run(ctx)
	return nil
}

func (o *Outbound) stop() error {
	o.listener.Shutdown()
	o.cancel()
	<-o.done
	return nil
}

func (o *Outbound) run(ctx context.Context) {
	defer close(o.done)

	var attempt uint
	for {
		c, err := o.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			o.dialErrors.Inc(1)
			o.logger.Warn("failed to connect", zap.Uint("attempt", attempt), zap.Error(err))
			if o.backoff.Sleep(ctx, attempt) != nil {
				return
			}
			attempt++
			continue
		}
		attempt = 0

		o.logger.Info("connected")
		o.connections.Update(1)
		err = o.listener.Listen(ctx, c, c.Messages())
		o.connections.Update(0)
		if errors.Is(err, bus.ErrShutdown) || ctx.Err() != nil {
			return
		}
		o.logger.Info("connection lost, reconnecting", zap.Error(c.Err()))

		// Back off once so that a peer dropping every connection does not
		// make us spin.
		if o.backoff.Sleep(ctx, 0) != nil {
			return
		}
	}
}

func (o *Outbound) dial(ctx context.Context) (*conn, error) {
	o.dials.Inc(1)
	ws, res, err := o.dialer.DialContext(ctx, o.url, o.header)
	if err != nil {
		return nil, err
	}
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
	return newConn(ws, o.logger, o.writeTimeout), nil
}
