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

package http

import (
	"mime"
	"strings"

	"go.uber.org/netfn/encoding"
)

// HTTP headers used in requests and responses.
const (
	// ServiceHeader names the service being called.
	ServiceHeader = "Rpc-Service"

	// CodecHeader names the codec of the body.
	CodecHeader = "Rpc-Codec"

	// ErrorCodeHeader is set on responses carrying an encoding.RemoteError.
	ErrorCodeHeader = "Rpc-Error-Code"
)

var _contentTypes = map[string]string{
	"json":    "application/json",
	"msgpack": "application/msgpack",
}

func contentType(codec string) string {
	if ct, ok := _contentTypes[codec]; ok {
		return ct
	}
	return "application/octet-stream"
}

// kindOf guesses the message kind of a body from its Content-Type.
func kindOf(ct string) encoding.Kind {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		if mt == "application/json" || strings.HasPrefix(mt, "text/") {
			return encoding.Text
		}
	}
	return encoding.Binary
}
