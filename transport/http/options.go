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

	"github.com/opentracing/opentracing-go"
	"go.uber.org/netfn/encoding"
	"go.uber.org/zap"
)

// OutboundOption customizes an Outbound.
type OutboundOption func(*Outbound)

// WithClient sets the HTTP client used by an Outbound. Defaults to a pooled
// client from go-cleanhttp.
func WithClient(client *http.Client) OutboundOption {
	return func(o *Outbound) {
		o.client = client
	}
}

// WithCodec sets the codec of an Outbound. Defaults to JSON.
func WithCodec(codec encoding.Codec) OutboundOption {
	return func(o *Outbound) {
		o.codec = codec
	}
}

// OutboundTracer sets the tracer of an Outbound. Defaults to the
// opentracing global tracer.
func OutboundTracer(tracer opentracing.Tracer) OutboundOption {
	return func(o *Outbound) {
		o.tracer = tracer
	}
}

// HandlerOption customizes a Handler.
type HandlerOption func(*handler)

// HandlerLogger sets a zap Logger for a Handler.
func HandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *handler) {
		h.logger = logger
	}
}

// HandlerTracer sets the tracer of a Handler. Defaults to the opentracing
// global tracer.
func HandlerTracer(tracer opentracing.Tracer) HandlerOption {
	return func(h *handler) {
		h.tracer = tracer
	}
}

// MaxRequestSize bounds the size of request bodies a Handler reads.
// Defaults to 4 MiB.
func MaxRequestSize(n int64) HandlerOption {
	return func(h *handler) {
		h.maxRequestSize = n
	}
}
