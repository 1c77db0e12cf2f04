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

// Package bus multiplexes many concurrent calls over one duplex connection.
//
// New returns a Transport and a Listener sharing a pair of queues. Callers
// use the Transport from any number of goroutines. The Listener's Listen
// method is the only place where correlation state lives: for each
// connection (an epoch), Listen owns the outbound Sink, the inbound message
// stream and the registry of pending calls, and serves three kinds of
// events from one goroutine:
//
//   - correlation ID requests from callers,
//   - requests to write an encoded call to the sink,
//   - messages arriving from the peer.
//
// Because IDs are handed out by the same goroutine that writes requests and
// matches responses, two concurrent callers can never be given the same ID,
// and the counter restarts at zero for every epoch.
//
// When an epoch ends (Closer.Close, context cancellation, or the inbound
// stream ending) every pending call fails with an error matching
// ErrBusClosed. Transport.Call retries those calls on the next epoch, so a
// reconnecting transport calls Listen again with the new connection:
//
// 	transport, listener := bus.New(json.New())
// 	go func() {
// 		for conn := range connections {
// 			listener.Listen(ctx, conn, conn.Messages())
// 		}
// 	}()
// 	err := transport.Call(ctx, "TestApi", &req, &res)
package bus
