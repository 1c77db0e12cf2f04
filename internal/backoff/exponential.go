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

// Package backoff computes the delays of reconnect loops.
package backoff

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// Option configures an Exponential backoff.
type Option func(*options)

type options struct {
	base, min, max time.Duration
	rand           *rand.Rand
}

func (o options) validate() (err error) {
	if o.base <= 0 {
		err = multierr.Append(err, errors.New("backoff base must be greater than zero"))
	}
	if o.min < 0 {
		err = multierr.Append(err, errors.New("backoff min must not be negative"))
	}
	if o.max < 0 {
		err = multierr.Append(err, errors.New("backoff max must not be negative"))
	}
	if o.max < o.min {
		err = multierr.Append(err, errors.New("backoff max must not be less than min"))
	}
	return err
}

// BaseJump sets the delay unit that doubles with every attempt. Defaults
// to 10ms.
func BaseJump(d time.Duration) Option {
	return func(o *options) { o.base = d }
}

// MinBackoff sets the smallest delay ever returned. Defaults to 0.
func MinBackoff(d time.Duration) Option {
	return func(o *options) { o.min = d }
}

// MaxBackoff sets the largest delay ever returned. Defaults to 30s.
func MaxBackoff(d time.Duration) Option {
	return func(o *options) { o.max = d }
}

func randGenerator(r *rand.Rand) Option {
	return func(o *options) { o.rand = r }
}

// Exponential is a "full jitter" exponential backoff bounded to
// [min, max]: attempt n waits min plus a random duration of up to
// base*2^n. It is safe for concurrent use.
type Exponential struct {
	base, min time.Duration
	spread    int64

	mu   sync.Mutex
	rand *rand.Rand
}

// NewExponential builds an Exponential backoff.
func NewExponential(opts ...Option) (*Exponential, error) {
	o := options{
		base: 10 * time.Millisecond,
		max:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.rand == nil {
		o.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Exponential{
		base:   o.base,
		min:    o.min,
		spread: o.max.Nanoseconds() - o.min.Nanoseconds(),
		rand:   o.rand,
	}, nil
}

// Duration returns how long to wait before the given attempt, counting
// from 0.
func (e *Exponential) Duration(attempt uint) time.Duration {
	jump := e.spread
	if attempt < 63 && e.base.Nanoseconds() <= math.MaxInt64>>attempt {
		if j := (int64(1) << attempt) * e.base.Nanoseconds(); j < jump {
			jump = j
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.min + time.Duration(e.rand.Int63n(jump+1))
}

// Sleep waits for the backoff of the given attempt, or until ctx is done.
func (e *Exponential) Sleep(ctx context.Context, attempt uint) error {
	timer := time.NewTimer(e.Duration(attempt))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
