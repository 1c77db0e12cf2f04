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
	"errors"
	"fmt"

	"github.com/uber-go/tally"
	"go.uber.org/netfn"
	"go.uber.org/netfn/encoding"
	"go.uber.org/zap"
)

// Handler answers encoded TunnelRequests on behalf of a Service. It is safe
// for concurrent use.
type Handler struct {
	service netfn.Service
	codec   encoding.Codec
	logger  *zap.Logger

	requests tally.Counter
	failures tally.Scope
}

// NewHandler builds a Handler serving service with codec.
func NewHandler(service netfn.Service, codec encoding.Codec, opts ...Option) *Handler {
	options := newOptions(opts)
	scope := options.scope.SubScope("dispatch").Tagged(map[string]string{
		"service": service.Name(),
		"codec":   codec.Name(),
	})
	return &Handler{
		service:  service,
		codec:    codec,
		logger:   options.logger.With(zap.String("service", service.Name())),
		requests: scope.Counter("requests"),
		failures: scope,
	}
}

// Service returns the service this Handler serves.
func (h *Handler) Service() netfn.Service { return h.service }

// Codec returns the codec this Handler speaks.
func (h *Handler) Codec() encoding.Codec { return h.codec }

// Handle decodes msg, dispatches it and returns the encoded reply.
//
// Failures of the request are reported to the peer inside the reply. An
// error is only returned when no reply can be routed back, that is when the
// ref of msg cannot be read or the reply cannot be encoded.
func (h *Handler) Handle(ctx context.Context, msg encoding.Message) (encoding.Message, error) {
	h.requests.Inc(1)

	request := h.service.NewRequest()
	envelope := encoding.TunnelRequest{Payload: encoding.CallRequest{Call: request}}
	if err := h.codec.Decode(msg, &envelope); err != nil {
		refs, perr := h.codec.PartialDecode(msg)
		if perr != nil || refs.Ref == nil {
			h.fail(encoding.CodeBadRequest)
			return encoding.Message{}, fmt.Errorf("cannot read ref of inbound request: %v", err)
		}
		return h.reply(*refs.Ref, nil, &encoding.RemoteError{
			Code:    encoding.CodeBadRequest,
			Message: fmt.Sprintf("failed to decode request: %v", err),
		})
	}

	if name := envelope.Payload.Service; name != h.service.Name() {
		return h.reply(envelope.Ref, nil, &encoding.RemoteError{
			Code:    encoding.CodeUnknownService,
			Message: fmt.Sprintf("unknown service %q", name),
		})
	}

	response, err := Dispatch(ctx, h.service, request)
	if err != nil {
		return h.reply(envelope.Ref, nil, err)
	}
	return h.reply(envelope.Ref, response, nil)
}

func (h *Handler) reply(ref uint64, response interface{}, err error) (encoding.Message, error) {
	res := encoding.TunnelResponse{Ref: encoding.Uint64(ref), Payload: response}
	if err != nil {
		res.Error = asRemoteError(err)
		h.fail(res.Error.Code)
		h.logger.Info("request failed",
			zap.Uint64("ref", ref),
			zap.String("code", string(res.Error.Code)),
			zap.String("message", res.Error.Message))
	}

	msg, encErr := h.codec.Encode(res)
	if encErr == nil {
		return msg, nil
	}
	if res.Error != nil {
		return encoding.Message{}, encErr
	}

	h.logger.Error("failed to encode response", zap.Uint64("ref", ref), zap.Error(encErr))
	return h.reply(ref, nil, &encoding.RemoteError{
		Code:    encoding.CodeInternal,
		Message: fmt.Sprintf("failed to encode response: %v", encErr),
	})
}

func (h *Handler) fail(code encoding.RemoteCode) {
	h.failures.Tagged(map[string]string{"code": string(code)}).Counter("failures").Inc(1)
}

func asRemoteError(err error) *encoding.RemoteError {
	var remote *encoding.RemoteError
	if errors.As(err, &remote) {
		return remote
	}
	return &encoding.RemoteError{Code: encoding.CodeInternal, Message: err.Error()}
}
