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

package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/netfn"
	"go.uber.org/netfn/encoding"
)

// Dispatch invokes service with an already decoded request union.
//
// Requests without exactly one variant set are rejected with
// CodeBadRequest before reaching the service. Service failures are reported
// with CodeInternal, as are responses whose variant does not match the
// request's.
func Dispatch(ctx context.Context, service netfn.Service, request interface{}) (interface{}, error) {
	reqVariant, err := variantOf(request)
	if err != nil {
		return nil, err
	}

	response, err := service.Dispatch(ctx, request)
	if err != nil {
		return nil, &encoding.RemoteError{Code: encoding.CodeInternal, Message: err.Error()}
	}

	if reqVariant == "" {
		return response, nil
	}
	if u, ok := response.(netfn.Union); ok {
		if resVariant := u.Variant(); resVariant != reqVariant {
			return nil, &encoding.RemoteError{
				Code: encoding.CodeInternal,
				Message: fmt.Sprintf("service %q answered %q request with %q response",
					service.Name(), reqVariant, resVariant),
			}
		}
	}
	return response, nil
}

// variantOf returns the variant of a request union, or "" if request is not
// a Union.
func variantOf(request interface{}) (string, error) {
	u, ok := request.(netfn.Union)
	if !ok {
		return "", nil
	}
	variant := u.Variant()
	if variant == "" {
		return "", &encoding.RemoteError{
			Code:    encoding.CodeBadRequest,
			Message: "request must have exactly one variant set",
		}
	}
	return variant, nil
}
