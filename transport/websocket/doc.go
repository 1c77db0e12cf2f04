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

// Package websocket carries netfn calls over a single WebSocket connection.
//
// An Outbound owns a bus: every call made through it is multiplexed over
// the current connection, and calls interrupted by a dropped connection
// are retried once the Outbound has reconnected.
//
//	outbound, err := websocket.NewOutbound("ws://127.0.0.1:8080/", json.New())
//	if err := outbound.Start(); err != nil { ... }
//	defer outbound.Stop()
//	client := testapi.NewClient(outbound)
//
// An Inbound serves a service to any number of Outbounds. Requests on a
// connection are handled concurrently and answered in completion order.
//
// Both JSON and MessagePack codecs are supported: text messages travel as
// WebSocket text frames and binary messages as binary frames.
package websocket
