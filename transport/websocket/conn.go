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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/netfn/bus"
	"go.uber.org/netfn/encoding"
	"go.uber.org/zap"
)

const _closeTimeout = time.Second

// ErrConnClosed is returned when sending on a closed connection.
var ErrConnClosed = errors.New("websocket connection closed")

var _ bus.Sink = (*conn)(nil)

// conn adapts a WebSocket connection into a bus.Sink and a channel of
// inbound messages.
type conn struct {
	ws           *websocket.Conn
	logger       *zap.Logger
	writeTimeout time.Duration

	// wmu serializes writes. gorilla/websocket allows one concurrent
	// writer.
	wmu sync.Mutex

	messages  chan encoding.Message
	closed    chan struct{}
	closeOnce sync.Once
	done      chan struct{}
	err       atomic.Error
}

func newConn(ws *websocket.Conn, logger *zap.Logger, writeTimeout time.Duration) *conn {
	c := &conn{
		ws:           ws,
		logger:       logger.With(zap.Stringer("remote", ws.RemoteAddr())),
		writeTimeout: writeTimeout,
		messages:     make(chan encoding.Message),
		closed:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *conn) Messages() <-chan encoding.Message {
	return c.messages
}

// Err returns the error which ended the connection, if it did not end with
// a normal closure.
func (c *conn) Err() error {
	return c.err.Load()
}

func (c *conn) Send(ctx context.Context, msg encoding.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	frameType, err := frameTypeOf(msg.Kind)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	deadline, _ := ctx.Deadline()
	if c.writeTimeout > 0 {
		if t := time.Now().Add(c.writeTimeout); deadline.IsZero() || t.Before(deadline) {
			deadline = t
		}
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return wrapError(err)
	}
	return wrapError(c.ws.WriteMessage(frameType, msg.Data))
}

// Close sends a close frame to the peer, closes the connection and waits
// for the read goroutine to exit.
func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		// WriteControl may be called concurrently with WriteMessage.
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := c.ws.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(_closeTimeout)); werr != nil {
			c.logger.Debug("failed to send close frame", zap.Error(werr))
		}
		err = c.ws.Close()
	})
	<-c.done
	return err
}

func (c *conn) readLoop() {
	defer close(c.done)
	defer close(c.messages)

	for {
		frameType, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
			default:
				if err := wrapError(err); err != io.EOF {
					c.err.Store(err)
					c.logger.Warn("websocket connection failed", zap.Error(err))
				}
			}
			return
		}

		var kind encoding.Kind
		switch frameType {
		case websocket.TextMessage:
			kind = encoding.Text
		case websocket.BinaryMessage:
			kind = encoding.Binary
		default:
			c.logger.Debug("dropping websocket frame of unknown type", zap.Int("type", frameType))
			continue
		}

		select {
		case c.messages <- encoding.Message{Kind: kind, Data: data}:
		case <-c.closed:
			return
		}
	}
}

func frameTypeOf(kind encoding.Kind) (int, error) {
	switch kind {
	case encoding.Text:
		return websocket.TextMessage, nil
	case encoding.Binary:
		return websocket.BinaryMessage, nil
	default:
		return 0, fmt.Errorf("cannot send %v message over a websocket", kind)
	}
}

// wrapError maps a normal closure by the peer to io.EOF.
func wrapError(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseNoStatusReceived, websocket.CloseGoingAway:
			return io.EOF
		}
	}
	return err
}
