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

// Package bufferpool pools the buffers used to assemble outbound frames
// and to read inbound bodies.
package bufferpool

import (
	"bytes"
	"sync"
)

const _defaultMaxRetained = 1 << 20

var _pool = NewPool()

// Option customizes a Pool.
type Option func(*Pool)

// MaxRetained sets the capacity above which buffers are dropped instead of
// being returned to the pool. Defaults to 1 MiB.
func MaxRetained(n int) Option {
	return func(p *Pool) {
		p.maxRetained = n
	}
}

// Pool is a pool of bytes.Buffers.
type Pool struct {
	maxRetained int
	pool        sync.Pool
}

// NewPool returns a new Pool.
func NewPool(opts ...Option) *Pool {
	p := &Pool{maxRetained: _defaultMaxRetained}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns an empty buffer from the pool.
func (p *Pool) Get() *bytes.Buffer {
	buf, ok := p.pool.Get().(*bytes.Buffer)
	if !ok {
		return &bytes.Buffer{}
	}
	buf.Reset()
	return buf
}

// Put returns buf to the pool. buf must not be used afterwards.
func (p *Pool) Put(buf *bytes.Buffer) {
	if buf.Cap() > p.maxRetained {
		return
	}
	p.pool.Put(buf)
}

// Get returns an empty buffer from the default pool.
func Get() *bytes.Buffer {
	return _pool.Get()
}

// Put returns buf to the default pool.
func Put(buf *bytes.Buffer) {
	_pool.Put(buf)
}
