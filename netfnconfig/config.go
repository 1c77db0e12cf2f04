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

package netfnconfig

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/netfn/bus"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/encoding/json"
	"go.uber.org/netfn/encoding/msgpack"
	"go.uber.org/netfn/transport/stream"
	"go.uber.org/netfn/transport/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures a netfn client or server.
type Config struct {
	// Service is the name of the service being called or served.
	Service string `config:"service"`

	// Codec is "json" or "msgpack". Defaults to "json".
	Codec string `config:"codec"`

	Logging   Logging    `config:"logging"`
	Bus       Bus        `config:"bus"`
	Websocket *Websocket `config:"websocket"`
	HTTP      *HTTP      `config:"http"`
	Stream    *Stream    `config:"stream"`
}

// Logging configures the logger built by NewLogger.
type Logging struct {
	// Level is the minimum enabled level. Defaults to info.
	Level Level `config:"level"`

	// Development enables the human-friendly console encoder.
	Development bool `config:"development"`
}

// Bus configures the multiplexed bus of the websocket and stream
// transports.
type Bus struct {
	// BufferSize is the capacity of the queues between callers and the
	// bus. Defaults to 128.
	BufferSize *int `config:"bufferSize"`

	// Delivery is "at-least-once" or "at-most-once". Defaults to
	// at-least-once.
	Delivery Delivery `config:"delivery"`

	// MaxAttempts caps the attempts of a call. Zero means no limit.
	MaxAttempts int `config:"maxAttempts"`
}

// Websocket configures the websocket transport.
type Websocket struct {
	// URL is dialed by outbounds.
	URL string `config:"url,interpolate"`

	// Address is listened on by inbounds.
	Address string `config:"address,interpolate"`

	Backoff Backoff `config:"backoff"`

	// WriteTimeout bounds every write to a connection. Zero means no
	// bound.
	WriteTimeout time.Duration `config:"writeTimeout"`
}

// Backoff configures the delay between reconnection attempts.
//
//	backoff:
//	  base: 10ms
//	  min: 0s
//	  max: 30s
type Backoff struct {
	Base time.Duration `config:"base"`
	Min  time.Duration `config:"min"`
	Max  time.Duration `config:"max"`
}

// HTTP configures the HTTP transport.
type HTTP struct {
	// BaseURL is the URL outbounds post to. It must end with "/".
	BaseURL string `config:"baseURL,interpolate"`

	// Address is listened on by handlers.
	Address string `config:"address,interpolate"`
}

// Stream configures the length-prefixed stream transport over TCP.
type Stream struct {
	Address      string        `config:"address,interpolate"`
	MaxFrameSize int           `config:"maxFrameSize"`
	WriteTimeout time.Duration `config:"writeTimeout"`
}

// Validate reports every problem of the configuration.
func (c *Config) Validate() (err error) {
	if _, cerr := c.NewCodec(); cerr != nil {
		err = multierr.Append(err, cerr)
	}
	if c.Bus.BufferSize != nil && *c.Bus.BufferSize < 0 {
		err = multierr.Append(err, fmt.Errorf("bus.bufferSize must not be negative, got %d", *c.Bus.BufferSize))
	}
	if c.Bus.MaxAttempts < 0 {
		err = multierr.Append(err, fmt.Errorf("bus.maxAttempts must not be negative, got %d", c.Bus.MaxAttempts))
	}
	if w := c.Websocket; w != nil {
		if w.URL == "" && w.Address == "" {
			err = multierr.Append(err, errors.New("websocket requires a url or an address"))
		}
		if w.Backoff.Base < 0 || w.Backoff.Min < 0 || w.Backoff.Max < 0 {
			err = multierr.Append(err, errors.New("websocket.backoff durations must not be negative"))
		}
		if w.WriteTimeout < 0 {
			err = multierr.Append(err, fmt.Errorf("websocket.writeTimeout must not be negative, got %v", w.WriteTimeout))
		}
	}
	if h := c.HTTP; h != nil && h.BaseURL == "" && h.Address == "" {
		err = multierr.Append(err, errors.New("http requires a baseURL or an address"))
	}
	if s := c.Stream; s != nil {
		if s.Address == "" {
			err = multierr.Append(err, errors.New("stream requires an address"))
		}
		if s.MaxFrameSize < 0 {
			err = multierr.Append(err, fmt.Errorf("stream.maxFrameSize must not be negative, got %d", s.MaxFrameSize))
		}
		if s.WriteTimeout < 0 {
			err = multierr.Append(err, fmt.Errorf("stream.writeTimeout must not be negative, got %v", s.WriteTimeout))
		}
	}
	return err
}

// NewCodec returns the configured codec.
func (c *Config) NewCodec() (encoding.Codec, error) {
	switch c.Codec {
	case "", json.Name:
		return json.New(), nil
	case msgpack.Name:
		return msgpack.New(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q: expected %q or %q", c.Codec, json.Name, msgpack.Name)
	}
}

// NewLogger builds a zap Logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if c.Logging.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(c.Logging.Level))
	return cfg.Build()
}

// BusOptions returns the options of the configured bus.
func (c *Config) BusOptions() []bus.Option {
	opts := []bus.Option{
		bus.WithDeliverySemantics(bus.DeliverySemantics(c.Bus.Delivery)),
	}
	if c.Bus.BufferSize != nil {
		opts = append(opts, bus.BufferSize(*c.Bus.BufferSize))
	}
	if c.Bus.MaxAttempts > 0 {
		opts = append(opts, bus.WithMaxAttempts(c.Bus.MaxAttempts))
	}
	return opts
}

// WebsocketOutboundOptions returns the options of websocket outbounds,
// bus options included.
func (c *Config) WebsocketOutboundOptions() []websocket.OutboundOption {
	opts := []websocket.OutboundOption{websocket.BusOptions(c.BusOptions()...)}
	if c.Websocket != nil {
		b := c.Websocket.Backoff
		opts = append(opts, websocket.ReconnectBackoff(websocket.Backoff{
			Base: b.Base,
			Min:  b.Min,
			Max:  b.Max,
		}))
		if c.Websocket.WriteTimeout > 0 {
			opts = append(opts, websocket.WriteTimeout(c.Websocket.WriteTimeout))
		}
	}
	return opts
}

// WebsocketInboundOptions returns the options of websocket inbounds.
func (c *Config) WebsocketInboundOptions() []websocket.InboundOption {
	if c.Websocket == nil || c.Websocket.WriteTimeout == 0 {
		return nil
	}
	return []websocket.InboundOption{websocket.WriteTimeout(c.Websocket.WriteTimeout)}
}

// StreamOptions returns the options of stream connections.
func (c *Config) StreamOptions() []stream.Option {
	if c.Stream == nil {
		return nil
	}
	var opts []stream.Option
	if c.Stream.MaxFrameSize > 0 {
		opts = append(opts, stream.MaxFrameSize(c.Stream.MaxFrameSize))
	}
	if c.Stream.WriteTimeout > 0 {
		opts = append(opts, stream.WriteTimeout(c.Stream.WriteTimeout))
	}
	return opts
}
