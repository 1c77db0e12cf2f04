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
	"net/http"

	"go.uber.org/netfn/encoding"
)

var (
	_codeToStatusCode = map[encoding.RemoteCode]int{
		encoding.CodeBadRequest:     http.StatusBadRequest,
		encoding.CodeUnknownService: http.StatusNotFound,
		encoding.CodeInternal:       http.StatusInternalServerError,
	}

	_statusCodeToCode = map[int]encoding.RemoteCode{
		http.StatusBadRequest:          encoding.CodeBadRequest,
		http.StatusNotFound:            encoding.CodeUnknownService,
		http.StatusInternalServerError: encoding.CodeInternal,
	}
)

func codeToStatusCode(code encoding.RemoteCode) int {
	if status, ok := _codeToStatusCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// statusCodeToCode does a best-effort conversion of an HTTP status code
// which came without an Rpc-Error-Code header.
func statusCodeToCode(status int) encoding.RemoteCode {
	if code, ok := _statusCodeToCode[status]; ok {
		return code
	}
	if status >= 400 && status < 500 {
		return encoding.CodeBadRequest
	}
	return encoding.CodeInternal
}
