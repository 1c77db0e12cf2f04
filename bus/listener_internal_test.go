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
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/encoding/json"
)

type recordingSink struct {
	mu     sync.Mutex
	sent   []encoding.Message
	closed bool
}

func (s *recordingSink) Send(_ context.Context, msg encoding.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestSendFromPreviousEpochIsRejected(t *testing.T) {
	transport, listener := New(json.New())

	// A request that was granted its ref by epoch 7 is still queued when
	// a later epoch starts.
	stale := &sendRequest{
		ref:    0,
		epoch:  7,
		msg:    encoding.Message{Kind: encoding.Text, Data: []byte(`{"ref":0}`)},
		waiter: make(chan result, 1),
	}
	transport.sends <- stale

	sink := &recordingSink{}
	stream := make(chan encoding.Message)
	done := make(chan error, 1)
	go func() {
		done <- listener.Listen(context.Background(), sink, stream)
	}()

	res := <-stale.waiter
	var closed *ClosedError
	require.ErrorAs(t, res.err, &closed)
	assert.Equal(t, uint64(7), closed.Epoch)
	assert.False(t, closed.Sent)

	close(stream)
	require.NoError(t, <-done)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Empty(t, sink.sent, "stale request must not reach the sink")
	assert.True(t, sink.closed)
}

func TestQueuedSendsFailUnsentOnTermination(t *testing.T) {
	transport, listener := New(json.New())

	// Epochs are numbered from 1, so the request is stale no matter which
	// event the epoch picks first.
	queued := &sendRequest{
		ref:    4,
		epoch:  0,
		waiter: make(chan result, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport.sends <- queued
	require.NoError(t, listener.Listen(ctx, &recordingSink{}, make(chan encoding.Message)))

	res := <-queued.waiter
	var closed *ClosedError
	require.ErrorAs(t, res.err, &closed)
	assert.False(t, closed.Sent)
}
