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

// Package http implements a request-per-call netfn transport over HTTP.
//
// Unlike the multiplexed transports, no correlation is needed: each call is
// a POST whose body is the encoded request union and whose response body is
// the encoded response union.
//
//	outbound, err := http.NewOutbound("http://127.0.0.1:8080/rpc/")
//	client := testapi.NewClient(outbound)
//
// On the serving side, NewHandler builds an http.Handler for one service.
//
//	mux.Handle("/rpc/", http.NewHandler(service, json.New()))
//
// Failures reported by the service travel as an encoded
// encoding.RemoteError with a matching HTTP status code.
package http
