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

package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/netfn"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/encoding/json"
	"go.uber.org/netfn/encoding/msgpack"
	"go.uber.org/netfn/examples/testapi"
	"go.uber.org/netfn/examples/testapi/testapitest"
	nethttp "go.uber.org/netfn/transport/http"
	"go.uber.org/zap/zaptest"
)

func newServer(t *testing.T, codec encoding.Codec, opts ...nethttp.HandlerOption) *httptest.Server {
	return serve(t, testapi.NewContainer(testapi.NewServer(zaptest.NewLogger(t))), codec, opts...)
}

func serve(t *testing.T, service netfn.Service, codec encoding.Codec, opts ...nethttp.HandlerOption) *httptest.Server {
	opts = append([]nethttp.HandlerOption{nethttp.HandlerLogger(zaptest.NewLogger(t))}, opts...)
	mux := http.NewServeMux()
	mux.Handle("/rpc/", nethttp.NewHandler(service, codec, opts...))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newOutbound(t *testing.T, url string, opts ...nethttp.OutboundOption) *nethttp.Outbound {
	out, err := nethttp.NewOutbound(url, opts...)
	require.NoError(t, err)
	return out
}

func TestRoundTrip(t *testing.T) {
	for _, codec := range []encoding.Codec{json.New(), msgpack.New()} {
		t.Run(codec.Name(), func(t *testing.T) {
			server := newServer(t, codec)
			client := testapi.NewClient(newOutbound(t, server.URL+"/rpc/", nethttp.WithCodec(codec)))
			ctx := context.Background()

			require.NoError(t, client.Foo(ctx))
			require.NoError(t, client.Bar(ctx, true))

			baz, err := client.Baz(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint32(42), baz)

			qaz, err := client.Qaz(ctx, "hello world")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, qaz)

			qoz, err := client.Qoz(ctx, map[string]string{"hello": "world"}, 9)
			require.NoError(t, err)
			assert.Equal(t, testapi.QozOk(true), qoz)

			qoz, err = client.Qoz(ctx, nil, 10)
			require.NoError(t, err)
			assert.Equal(t, testapi.QozErr("10 is not allowed"), qoz)
		})
	}
}

func TestServiceError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	impl := testapitest.NewMockInterface(mockCtrl)
	impl.EXPECT().Baz(gomock.Any()).Return(uint32(0), errors.New("database unavailable"))

	server := serve(t, testapi.NewContainer(impl), json.New())
	client := testapi.NewClient(newOutbound(t, server.URL+"/rpc/"))

	_, err := client.Baz(context.Background())
	require.Error(t, err)

	var remote *encoding.RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	assert.Equal(t, encoding.CodeInternal, remote.Code)
	assert.Equal(t, "database unavailable", remote.Message)
}

func TestUnknownService(t *testing.T) {
	server := newServer(t, json.New())
	out := newOutbound(t, server.URL+"/rpc/")

	var res testapi.TestAPIResponse
	err := out.Call(context.Background(), "Other", &testapi.TestAPIRequest{Foo: &testapi.TestAPIFooArgs{}}, &res)

	var remote *encoding.RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	assert.Equal(t, encoding.CodeUnknownService, remote.Code)
	assert.Contains(t, remote.Message, `"Other"`)
}

func TestBadRequest(t *testing.T) {
	server := newServer(t, json.New())

	tests := []struct {
		desc string
		body string
	}{
		{desc: "malformed", body: `{"Foo":`},
		{desc: "no variant", body: `{}`},
		{desc: "two variants", body: `{"Foo":{},"Baz":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			res, err := http.Post(server.URL+"/rpc/"+testapi.ServiceName, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, string(encoding.CodeBadRequest), res.Header.Get(nethttp.ErrorCodeHeader))
		})
	}
}

func TestHandlerRejectsOtherMethods(t *testing.T) {
	server := newServer(t, json.New())

	res, err := http.Get(server.URL + "/rpc/" + testapi.ServiceName)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, http.MethodPost, res.Header.Get("Allow"))
}

func TestRequestTooLarge(t *testing.T) {
	server := newServer(t, json.New(), nethttp.MaxRequestSize(8))
	client := testapi.NewClient(newOutbound(t, server.URL+"/rpc/"))

	_, err := client.Qaz(context.Background(), "a string longer than eight bytes")

	var remote *encoding.RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	assert.Equal(t, encoding.CodeBadRequest, remote.Code)
}

func TestErrorWithoutHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := testapi.NewClient(newOutbound(t, server.URL+"/"))
	err := client.Foo(context.Background())

	var remote *encoding.RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	assert.Equal(t, encoding.CodeInternal, remote.Code)
	assert.Equal(t, "upstream unavailable", remote.Message)
}

func TestCallContextCancelled(t *testing.T) {
	unblock := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-unblock
	}))
	defer server.Close()
	defer close(unblock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testapi.NewClient(newOutbound(t, server.URL+"/"))
	assert.Equal(t, context.Canceled, client.Foo(ctx))
}

func TestNewOutboundValidatesURL(t *testing.T) {
	tests := []struct {
		give    string
		wantErr string
	}{
		{give: "/rpc/", wantErr: "must be absolute"},
		{give: "http://localhost/rpc", wantErr: `must end with "/"`},
		{give: "http://local host/", wantErr: "invalid base URL"},
	}

	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			_, err := nethttp.NewOutbound(tt.give)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOutboundURL(t *testing.T) {
	out := newOutbound(t, "http://localhost:8080/api/v1/")
	assert.Equal(t, "http://localhost:8080/api/v1/TestApi", out.URL(testapi.ServiceName))
}

func TestTracingPropagates(t *testing.T) {
	tracer := mocktracer.New()
	server := newServer(t, json.New(), nethttp.HandlerTracer(tracer))
	client := testapi.NewClient(newOutbound(t, server.URL+"/rpc/", nethttp.OutboundTracer(tracer)))

	require.NoError(t, client.Foo(context.Background()))

	// The handler may finish its span after the client has read the reply.
	require.Eventually(t, func() bool {
		return len(tracer.FinishedSpans()) == 2
	}, time.Second, time.Millisecond)

	spans := make(map[string]*mocktracer.MockSpan)
	for _, span := range tracer.FinishedSpans() {
		spans[span.OperationName] = span
	}
	serverSpan, clientSpan := spans["netfn.http.handle"], spans["netfn.http.call"]
	require.NotNil(t, serverSpan)
	require.NotNil(t, clientSpan)
	assert.Equal(t, clientSpan.SpanContext.SpanID, serverSpan.ParentID)
	assert.Equal(t, clientSpan.SpanContext.TraceID, serverSpan.SpanContext.TraceID)
	assert.Equal(t, uint16(http.StatusOK), clientSpan.Tag("http.status_code"))
}
