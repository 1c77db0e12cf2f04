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
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/netfn/bus"
	"go.uber.org/netfn/encoding"
	"go.uber.org/zap"
)

// ErrConnClosed is returned when sending on a closed Conn.
var ErrConnClosed = errors.New("stream connection closed")

var _ bus.Sink = (*Conn)(nil)

type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

// Conn frames messages over an io.ReadWriteCloser.
//
// Inbound frames are read by a goroutine started by NewConn and delivered
// on Messages. Send may be called concurrently.
type Conn struct {
	rwc          io.ReadWriteCloser
	logger       *zap.Logger
	maxFrameSize int
	writeTimeout time.Duration

	// wmu serializes writes so that frames are never interleaved.
	wmu sync.Mutex

	messages  chan encoding.Message
	closed    chan struct{}
	closeOnce sync.Once
	done      chan struct{}
	err       atomic.Error
}

// NewConn starts reading frames from rwc.
func NewConn(rwc io.ReadWriteCloser, opts ...Option) *Conn {
	options := newOptions(opts)
	c := &Conn{
		rwc:          rwc,
		logger:       options.logger,
		maxFrameSize: options.maxFrameSize,
		writeTimeout: options.writeTimeout,
		messages:     make(chan encoding.Message),
		closed:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Messages returns the inbound messages of this Conn. The channel is closed
// when the underlying stream ends or the Conn is closed.
func (c *Conn) Messages() <-chan encoding.Message {
	return c.messages
}

// Err returns the error which ended the inbound stream, if any. It returns
// nil while the stream is open, after a clean end of stream, and after
// Close.
func (c *Conn) Err() error {
	return c.err.Load()
}

// Send writes msg as a single frame. If the stream supports write
// deadlines, the deadline of ctx and the WriteTimeout apply to the write,
// whichever comes first.
func (c *Conn) Send(ctx context.Context, msg encoding.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	if d, ok := c.rwc.(writeDeadliner); ok {
		deadline, _ := ctx.Deadline()
		if c.writeTimeout > 0 {
			if t := time.Now().Add(c.writeTimeout); deadline.IsZero() || t.Before(deadline) {
				deadline = t
			}
		}
		if err := d.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}
	return writeFrame(c.rwc, msg, c.maxFrameSize)
}

// Close closes the underlying stream and waits for the read goroutine to
// exit. The stream's Close must unblock pending reads, as it does for
// net.Conn.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.rwc.Close()
	})
	<-c.done
	return err
}

func (c *Conn) readLoop() {
	defer close(c.done)
	defer close(c.messages)

	r := bufio.NewReader(c.rwc)
	for {
		msg, err := readFrame(r, c.maxFrameSize)
		if err != nil {
			select {
			case <-c.closed:
			default:
				if err != io.EOF {
					c.err.Store(err)
					c.logger.Warn("stream connection failed", zap.Error(err))
				}
			}
			return
		}

		select {
		case c.messages <- msg:
		case <-c.closed:
			return
		}
	}
}
