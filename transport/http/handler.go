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
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	opentracinglog "github.com/opentracing/opentracing-go/log"
	"go.uber.org/netfn"
	"go.uber.org/netfn/dispatch"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/internal/bufferpool"
	"go.uber.org/zap"
)

const _defaultMaxRequestSize = 4 * 1024 * 1024

// handler adapts a netfn.Service into an http.Handler.
type handler struct {
	service        netfn.Service
	codec          encoding.Codec
	logger         *zap.Logger
	tracer         opentracing.Tracer
	maxRequestSize int64
}

// NewHandler builds an http.Handler which serves the given service to
// Outbounds using the same codec.
//
// The handler may be mounted under any prefix: only the last element of the
// request path is matched against the service name.
func NewHandler(service netfn.Service, codec encoding.Codec, opts ...HandlerOption) http.Handler {
	h := &handler{
		service:        service,
		codec:          codec,
		logger:         zap.NewNop(),
		maxRequestSize: _defaultMaxRequestSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.tracer == nil {
		h.tracer = opentracing.GlobalTracer()
	}
	h.logger = h.logger.With(zap.String("service", service.Name()))
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, fmt.Sprintf("%s method not allowed", req.Method), http.StatusMethodNotAllowed)
		return
	}

	span := h.createSpan(req)
	defer span.Finish()

	ctx := opentracing.ContextWithSpan(req.Context(), span)
	kind := kindOf(req.Header.Get("Content-Type"))

	response, err := h.handle(ctx, req, kind)
	if err != nil {
		ext.Error.Set(span, true)
		span.LogFields(opentracinglog.Error(err))
		h.writeError(w, span, kind, err)
		return
	}

	msg, err := h.codec.Encode(response)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		h.writeError(w, span, kind, &encoding.RemoteError{
			Code:    encoding.CodeInternal,
			Message: fmt.Sprintf("failed to encode response: %v", err),
		})
		return
	}

	w.Header().Set("Content-Type", contentType(h.codec.Name()))
	w.WriteHeader(http.StatusOK)
	ext.HTTPStatusCode.Set(span, http.StatusOK)
	if _, err := w.Write(msg.Data); err != nil {
		h.logger.Info("failed to write response", zap.Error(err))
	}
}

func (h *handler) handle(ctx context.Context, req *http.Request, kind encoding.Kind) (interface{}, error) {
	if name := path.Base(req.URL.Path); name != h.service.Name() {
		return nil, &encoding.RemoteError{
			Code:    encoding.CodeUnknownService,
			Message: fmt.Sprintf("unknown service %q", name),
		}
	}

	body := bufferpool.Get()
	defer bufferpool.Put(body)
	if _, err := body.ReadFrom(io.LimitReader(req.Body, h.maxRequestSize+1)); err != nil {
		return nil, &encoding.RemoteError{
			Code:    encoding.CodeBadRequest,
			Message: fmt.Sprintf("failed to read request: %v", err),
		}
	}
	if int64(body.Len()) > h.maxRequestSize {
		return nil, &encoding.RemoteError{
			Code:    encoding.CodeBadRequest,
			Message: fmt.Sprintf("request exceeds %d bytes", h.maxRequestSize),
		}
	}

	request := h.service.NewRequest()
	if err := h.codec.Decode(encoding.Message{Kind: kind, Data: body.Bytes()}, request); err != nil {
		return nil, &encoding.RemoteError{
			Code:    encoding.CodeBadRequest,
			Message: fmt.Sprintf("failed to decode request: %v", err),
		}
	}

	return dispatch.Dispatch(ctx, h.service, request)
}

func (h *handler) writeError(w http.ResponseWriter, span opentracing.Span, kind encoding.Kind, err error) {
	var remote *encoding.RemoteError
	if !errors.As(err, &remote) {
		remote = &encoding.RemoteError{Code: encoding.CodeInternal, Message: err.Error()}
	}
	status := codeToStatusCode(remote.Code)
	ext.HTTPStatusCode.Set(span, uint16(status))

	msg, encErr := h.codec.Encode(remote)
	if encErr != nil {
		h.logger.Error("failed to encode error", zap.Error(encErr))
		http.Error(w, remote.Message, status)
		return
	}

	w.Header().Set("Content-Type", contentType(h.codec.Name()))
	w.Header().Set(ErrorCodeHeader, string(remote.Code))
	w.WriteHeader(status)
	if _, err := w.Write(msg.Data); err != nil {
		h.logger.Info("failed to write error response", zap.Error(err))
	}
}

func (h *handler) createSpan(req *http.Request) opentracing.Span {
	// Extract failures leave parentCtx nil, which starts a new trace.
	parentCtx, _ := h.tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))
	span := h.tracer.StartSpan(
		"netfn.http.handle",
		ext.RPCServerOption(parentCtx),
		opentracing.Tags{"service": h.service.Name()},
	)
	ext.HTTPMethod.Set(span, req.Method)
	ext.HTTPUrl.Set(span, req.URL.String())
	return span
}
