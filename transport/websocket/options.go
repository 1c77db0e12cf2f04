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
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/uber-go/tally"
	"go.uber.org/netfn/bus"
	"go.uber.org/netfn/dispatch"
	"go.uber.org/zap"
)

// Backoff configures the delay between reconnection attempts of an
// Outbound. Zero fields keep their defaults.
type Backoff struct {
	// Base is the unit of the exponential backoff. Defaults to 10ms.
	Base time.Duration

	// Min is the shortest delay. Defaults to zero.
	Min time.Duration

	// Max is the longest delay. Defaults to 30s.
	Max time.Duration
}

// OutboundOption customizes an Outbound.
type OutboundOption interface {
	applyOutbound(*outboundOptions)
}

type outboundOptionFunc func(*outboundOptions)

func (f outboundOptionFunc) applyOutbound(opts *outboundOptions) { f(opts) }

type outboundOptions struct {
	logger  *zap.Logger
	scope   tally.Scope
	dialer  *websocket.Dialer
	header  http.Header
	backoff Backoff
	bus     []bus.Option

	writeTimeout time.Duration
}

// Dialer sets the dialer used to establish connections. Defaults to
// websocket.DefaultDialer.
func Dialer(d *websocket.Dialer) OutboundOption {
	return outboundOptionFunc(func(opts *outboundOptions) {
		opts.dialer = d
	})
}

// Header adds HTTP headers to every handshake.
func Header(h http.Header) OutboundOption {
	return outboundOptionFunc(func(opts *outboundOptions) {
		opts.header = h
	})
}

// ReconnectBackoff sets the backoff between reconnection attempts.
func ReconnectBackoff(b Backoff) OutboundOption {
	return outboundOptionFunc(func(opts *outboundOptions) {
		opts.backoff = b
	})
}

// BusOptions passes options to the bus owned by the Outbound, like its
// delivery semantics. Logger and Tally scope options of this package apply
// to the bus as well.
func BusOptions(o ...bus.Option) OutboundOption {
	return outboundOptionFunc(func(opts *outboundOptions) {
		opts.bus = append(opts.bus, o...)
	})
}

// InboundOption customizes an Inbound.
type InboundOption interface {
	applyInbound(*inboundOptions)
}

type inboundOptionFunc func(*inboundOptions)

func (f inboundOptionFunc) applyInbound(opts *inboundOptions) { f(opts) }

type inboundOptions struct {
	logger   *zap.Logger
	scope    tally.Scope
	upgrader websocket.Upgrader

	writeTimeout time.Duration
}

// Upgrader sets the upgrader used to accept connections, for example to
// check their origin.
func Upgrader(u websocket.Upgrader) InboundOption {
	return inboundOptionFunc(func(opts *inboundOptions) {
		opts.upgrader = u
	})
}

// Option customizes both Inbounds and Outbounds.
type Option interface {
	OutboundOption
	InboundOption
}

type option func(*zap.Logger, tally.Scope) (*zap.Logger, tally.Scope)

func (f option) applyOutbound(opts *outboundOptions) {
	opts.logger, opts.scope = f(opts.logger, opts.scope)
}

func (f option) applyInbound(opts *inboundOptions) {
	opts.logger, opts.scope = f(opts.logger, opts.scope)
}

// WithLogger sets a zap Logger.
func WithLogger(logger *zap.Logger) Option {
	return option(func(_ *zap.Logger, scope tally.Scope) (*zap.Logger, tally.Scope) {
		return logger, scope
	})
}

// WithTally sets a Tally scope for metrics.
func WithTally(scope tally.Scope) Option {
	return option(func(logger *zap.Logger, _ tally.Scope) (*zap.Logger, tally.Scope) {
		return logger, scope
	})
}

// WriteTimeout bounds every write to a connection, in addition to the
// deadline of the context of the write. Zero, the default, means no bound.
func WriteTimeout(d time.Duration) Option {
	return writeTimeout(d)
}

type writeTimeout time.Duration

func (d writeTimeout) applyOutbound(opts *outboundOptions) {
	opts.writeTimeout = time.Duration(d)
}

func (d writeTimeout) applyInbound(opts *inboundOptions) {
	opts.writeTimeout = time.Duration(d)
}

func newOutboundOptions(opts []OutboundOption) outboundOptions {
	options := outboundOptions{
		logger: zap.NewNop(),
		scope:  tally.NoopScope,
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt.applyOutbound(&options)
	}
	return options
}

func newInboundOptions(opts []InboundOption) inboundOptions {
	options := inboundOptions{
		logger: zap.NewNop(),
		scope:  tally.NoopScope,
	}
	for _, opt := range opts {
		opt.applyInbound(&options)
	}
	return options
}

func (o outboundOptions) busOptions() []bus.Option {
	return append([]bus.Option{
		bus.WithLogger(o.logger),
		bus.WithTally(o.scope),
	}, o.bus...)
}

func (o inboundOptions) dispatchOptions() []dispatch.Option {
	return []dispatch.Option{
		dispatch.WithLogger(o.logger),
		dispatch.WithTally(o.scope),
	}
}
