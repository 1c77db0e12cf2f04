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

// Package netfn provides the contracts of the netfn RPC substrate.
//
// A service is described once, as a set of named operations each with an
// argument record and a result. Code generated from that description
// produces a request union with one variant per operation, a response union
// whose variants line up with the request's, a client, and a container that
// dispatches requests to a user implementation. The generated code only
// depends on the two interfaces in this package: Service on the serving side
// and Transport on the calling side.
//
// Transports range from an in-process queue (transport/channel) and plain
// HTTP request/response (transport/http) to a single duplex connection
// shared by many concurrent callers (transport/websocket and
// transport/stream). The latter are built on package bus, which correlates
// inbound responses with outstanding calls, allocates correlation IDs, and
// fails in-flight calls when the connection drops so that they are retried
// on the next connection.
//
// Encodings are pluggable through encoding.Codec. JSON (encoding/json) and
// MessagePack (encoding/msgpack) codecs are provided.
package netfn
