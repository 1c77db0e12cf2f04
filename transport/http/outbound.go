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
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	opentracinglog "github.com/opentracing/opentracing-go/log"
	"go.uber.org/netfn"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/encoding/json"
	"go.uber.org/netfn/internal/bufferpool"
)

var _ netfn.Transport = (*Outbound)(nil)

// Outbound is a netfn.Transport which makes one HTTP POST per call.
//
// Requests are posted to the base URL joined with the service name. The
// body is the encoded request union, without the envelope used by
// multiplexed transports.
type Outbound struct {
	baseURL *url.URL
	client  *http.Client
	codec   encoding.Codec
	tracer  opentracing.Tracer
}

// NewOutbound builds an Outbound posting to baseURL, which must be an
// absolute URL ending with "/".
func NewOutbound(baseURL string, opts ...OutboundOption) (*Outbound, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %v", baseURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		return nil, fmt.Errorf("base URL %q must end with \"/\"", baseURL)
	}

	o := &Outbound{
		baseURL: u,
		client:  cleanhttp.DefaultPooledClient(),
		codec:   json.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = opentracing.GlobalTracer()
	}
	return o, nil
}

// URL returns the URL calls to service are posted to.
func (o *Outbound) URL(service string) string {
	return o.baseURL.ResolveReference(&url.URL{Path: url.PathEscape(service)}).String()
}

// Call implements netfn.Transport#Call.
func (o *Outbound) Call(ctx context.Context, service string, request, response interface{}) (err error) {
	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, o.tracer, "netfn.http.call")
	ext.SpanKindRPCClient.Set(span)
	span.SetTag("service", service)
	defer func() {
		if err != nil {
			ext.Error.Set(span, true)
			span.LogFields(opentracinglog.Error(err))
		}
		span.Finish()
	}()

	msg, err := o.codec.Encode(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, o.URL(service), bytes.NewReader(msg.Data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType(o.codec.Name()))
	req.Header.Set(ServiceHeader, service)
	req.Header.Set(CodecHeader, o.codec.Name())

	if err := o.tracer.Inject(span.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header)); err != nil {
		span.LogFields(opentracinglog.String("event", "failed to inject span context"), opentracinglog.Error(err))
	}

	res, err := o.client.Do(req.WithContext(ctx))
	if err != nil {
		// The client wraps context errors. Surface them as-is so that
		// callers can match on them.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	defer res.Body.Close()
	ext.HTTPStatusCode.Set(span, uint16(res.StatusCode))

	body := bufferpool.Get()
	defer bufferpool.Put(body)
	if _, err := body.ReadFrom(res.Body); err != nil {
		return err
	}
	reply := encoding.Message{Kind: msg.Kind, Data: body.Bytes()}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return o.codec.Decode(reply, response)
	}
	return o.errorFromResponse(res, reply)
}

// errorFromResponse reads the RemoteError carried by a non-2xx response.
// Responses that do not carry one, like those of proxies, are mapped from
// their status code.
func (o *Outbound) errorFromResponse(res *http.Response, reply encoding.Message) error {
	if res.Header.Get(ErrorCodeHeader) != "" {
		var remote encoding.RemoteError
		if err := o.codec.Decode(reply, &remote); err == nil {
			return &remote
		}
	}
	return &encoding.RemoteError{
		Code:    statusCodeToCode(res.StatusCode),
		Message: strings.TrimSpace(string(reply.Data)),
	}
}
