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

// Package netfnconfig builds netfn components from YAML configuration.
//
// A configuration names the codec, tunes the bus, and configures the
// transports a process uses:
//
//	service: TestApi
//	codec: msgpack
//	logging:
//	  level: debug
//	bus:
//	  bufferSize: 64
//	  delivery: at-most-once
//	  maxAttempts: 3
//	websocket:
//	  url: ws://${SERVER_HOST:127.0.0.1}:8080/
//	  address: :8080
//	  backoff:
//	    base: 10ms
//	    max: 5s
//	  writeTimeout: 10s
//	http:
//	  baseURL: http://127.0.0.1:8081/rpc/
//	  address: :8081
//	stream:
//	  address: 127.0.0.1:8082
//	  maxFrameSize: 1048576
//	  writeTimeout: 10s
//
// Addresses and URLs may reference environment variables as ${NAME} or
// ${NAME:default}.
package netfnconfig
