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
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/netfn"
	"go.uber.org/netfn/dispatch"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/internal/lifecycle"
	intnet "go.uber.org/netfn/internal/net"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Inbound serves a service to WebSocket clients.
type Inbound struct {
	listener net.Listener
	handler  *dispatch.Handler
	upgrader websocket.Upgrader
	timeout  time.Duration
	server   *intnet.HTTPServer
	logger   *zap.Logger
	once     *lifecycle.Once

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards conns and stopping. Hijacked connections are invisible to
	// the HTTP server, so the Inbound closes them itself.
	mu       sync.Mutex
	conns    map[*conn]struct{}
	stopping bool
	wg       sync.WaitGroup
}

// NewInbound builds an Inbound which will serve service on listener once
// started. The listener is closed when the Inbound stops.
func NewInbound(listener net.Listener, service netfn.Service, codec encoding.Codec, opts ...InboundOption) *Inbound {
	options := newInboundOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	i := &Inbound{
		listener: listener,
		handler:  dispatch.NewHandler(service, codec, options.dispatchOptions()...),
		upgrader: options.upgrader,
		timeout:  options.writeTimeout,
		logger:   options.logger.With(zap.String("service", service.Name())),
		once:     lifecycle.NewOnce(),
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[*conn]struct{}),
	}
	i.server = intnet.NewHTTPServer(&http.Server{Handler: i})
	return i
}

// Addr returns the address the Inbound listens on.
func (i *Inbound) Addr() net.Addr {
	return i.listener.Addr()
}

// Start starts accepting connections.
func (i *Inbound) Start() error {
	return i.once.Start(i.start)
}

// Stop stops accepting connections, closes the open ones and waits for
// their requests to finish.
func (i *Inbound) Stop() error {
	return i.once.Stop(i.stop)
}

// IsRunning returns whether the Inbound is running.
func (i *Inbound) IsRunning() bool {
	return i.once.IsRunning()
}

func (i *Inbound) start() error {
	if err := i.server.Serve(i.listener); err != nil {
		return err
	}
	i.logger.Info("started websocket inbound", zap.Stringer("addr", i.listener.Addr()))
	return nil
}

func (i *Inbound) stop() error {
	err := i.server.Shutdown(i.ctx)

	i.mu.Lock()
	i.stopping = true
	conns := make([]*conn, 0, len(i.conns))
	for c := range i.conns {
		conns = append(conns, c)
	}
	i.mu.Unlock()

	i.cancel()
	for _, c := range conns {
		_ = c.Close()
	}
	i.wg.Wait()
	return err
}

// ServeHTTP upgrades the request to a WebSocket connection and serves it
// until either side closes it.
func (i *Inbound) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		i.logger.Info("rejected websocket handshake", zap.Error(err))
		return
	}

	c := newConn(ws, i.logger, i.timeout)
	if !i.track(c) {
		_ = c.Close()
		return
	}
	defer i.untrack(c)

	i.serve(c)
}

func (i *Inbound) track(c *conn) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stopping {
		return false
	}
	i.conns[c] = struct{}{}
	i.wg.Add(1)
	return true
}

func (i *Inbound) untrack(c *conn) {
	i.mu.Lock()
	delete(i.conns, c)
	i.mu.Unlock()
	i.wg.Done()
}

// serve answers the requests of c concurrently. Writes are serialized by
// the conn.
func (i *Inbound) serve(c *conn) {
	g, ctx := errgroup.WithContext(i.ctx)
	for msg := range c.Messages() {
		msg := msg
		g.Go(func() error {
			reply, err := i.handler.Handle(ctx, msg)
			if err != nil {
				i.logger.Warn("dropping request without reply", zap.Error(err))
				return nil
			}
			return c.Send(ctx, reply)
		})
	}

	if err := g.Wait(); err != nil {
		i.logger.Info("failed to write reply", zap.Error(err))
	}
	if err := c.Close(); err != nil {
		i.logger.Debug("failed to close connection", zap.Error(err))
	}
}
