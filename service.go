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

package netfn

import "context"

// Service is the serving side of a generated service.
//
// Request and response values are the generated unions: structs with one
// pointer field per operation, exactly one of which is set.
type Service interface {
	// Name is the stable service name used for routing and logging.
	Name() string

	// NewRequest returns a pointer to an empty request union that an
	// inbound request may be decoded into.
	NewRequest() interface{}

	// Dispatch invokes the handler bound to the request's variant and
	// returns the matching response variant.
	Dispatch(ctx context.Context, request interface{}) (interface{}, error)
}

// Union is implemented by generated request and response unions.
type Union interface {
	// Variant returns the name of the variant that is set, or "" if none
	// is.
	Variant() string
}
