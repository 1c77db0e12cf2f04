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
	"math"
	"time"

	"go.uber.org/zap"
)

const _defaultMaxFrameSize = 16 * 1024 * 1024

// _maxFrameSize is the largest length a frame header can carry.
var _maxFrameSize uint32 = math.MaxUint32

// Option customizes a Conn or Serve.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(opts *options) { f(opts) }

type options struct {
	logger       *zap.Logger
	maxFrameSize int
	writeTimeout time.Duration
}

// WithLogger sets a zap Logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// MaxFrameSize bounds the size of the data of a frame, in both directions.
// Defaults to 16 MiB. Values above 4 GiB - 1 are lowered to it.
func MaxFrameSize(n int) Option {
	return optionFunc(func(opts *options) {
		opts.maxFrameSize = n
	})
}

// WriteTimeout bounds every write to the stream, in addition to the
// deadline of the context passed to Send. It only applies to streams with
// a SetWriteDeadline method, like net.Conn. Zero, the default, means no
// bound.
func WriteTimeout(d time.Duration) Option {
	return optionFunc(func(opts *options) {
		opts.writeTimeout = d
	})
}

func newOptions(opts []Option) options {
	options := options{
		logger:       zap.NewNop(),
		maxFrameSize: _defaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt.apply(&options)
	}
	if int64(options.maxFrameSize) > int64(_maxFrameSize) {
		options.maxFrameSize = int(_maxFrameSize)
	}
	return options
}
