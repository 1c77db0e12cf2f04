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
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	"go.uber.org/zap"
)

// DeliverySemantics decides which bus-closed failures Transport.Call
// retries.
type DeliverySemantics int

const (
	// AtLeastOnce retries every call attempt that failed because its epoch
	// ended, including attempts whose request already reached the peer.
	// The peer may therefore execute a call more than once.
	AtLeastOnce DeliverySemantics = iota

	// AtMostOnce only retries attempts whose request never reached the
	// sink. Attempts that were sent fail with a *ClosedError.
	AtMostOnce
)

func (s DeliverySemantics) String() string {
	switch s {
	case AtLeastOnce:
		return "at-least-once"
	case AtMostOnce:
		return "at-most-once"
	default:
		return fmt.Sprintf("DeliverySemantics(%d)", int(s))
	}
}

// UnmarshalText parses "at-least-once" or "at-most-once".
func (s *DeliverySemantics) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "at-least-once", "atleastonce":
		*s = AtLeastOnce
	case "at-most-once", "atmostonce":
		*s = AtMostOnce
	default:
		return fmt.Errorf("unknown delivery semantics %q", text)
	}
	return nil
}

// Option customizes a bus built with New.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(opts *options) { f(opts) }

type options struct {
	bufferSize  int
	logger      *zap.Logger
	scope       tally.Scope
	tracer      opentracing.Tracer
	semantics   DeliverySemantics
	maxAttempts int
}

const _defaultBufferSize = 128

// BufferSize sets the capacity of the queues between callers and the
// Listener. Defaults to 128.
func BufferSize(n int) Option {
	return optionFunc(func(opts *options) {
		opts.bufferSize = n
	})
}

// WithLogger sets a zap Logger for the bus.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// WithTally sets a Tally scope that will be used to record bus metrics.
func WithTally(scope tally.Scope) Option {
	return optionFunc(func(opts *options) {
		opts.scope = scope
	})
}

// WithTracer sets the tracer used to record a span for every call
// attempt. Defaults to the opentracing global tracer.
func WithTracer(tracer opentracing.Tracer) Option {
	return optionFunc(func(opts *options) {
		opts.tracer = tracer
	})
}

// WithDeliverySemantics sets the retry policy for calls interrupted by the
// end of an epoch. Defaults to AtLeastOnce.
func WithDeliverySemantics(s DeliverySemantics) Option {
	return optionFunc(func(opts *options) {
		opts.semantics = s
	})
}

// WithMaxAttempts bounds the number of attempts of a single call. Zero,
// the default, means calls are retried for as long as their context
// allows.
func WithMaxAttempts(n int) Option {
	return optionFunc(func(opts *options) {
		opts.maxAttempts = n
	})
}

func newOptions(opts []Option) options {
	options := options{
		bufferSize: _defaultBufferSize,
		logger:     zap.NewNop(),
		scope:      tally.NoopScope,
		semantics:  AtLeastOnce,
	}
	for _, opt := range opts {
		opt.apply(&options)
	}
	if options.tracer == nil {
		options.tracer = opentracing.GlobalTracer()
	}
	if options.bufferSize < 0 {
		options.bufferSize = 0
	}
	return options
}
