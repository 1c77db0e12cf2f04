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

package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/netfn/dispatch"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/encoding/json"
	"go.uber.org/netfn/encoding/msgpack"
	"go.uber.org/netfn/examples/testapi"
	"go.uber.org/netfn/examples/testapi/testapitest"
	"go.uber.org/zap/zaptest"
)

func encode(t *testing.T, codec encoding.Codec, v interface{}) encoding.Message {
	msg, err := codec.Encode(v)
	require.NoError(t, err)
	return msg
}

func decodeReply(t *testing.T, codec encoding.Codec, msg encoding.Message) (encoding.TunnelResponse, *testapi.TestAPIResponse) {
	var res testapi.TestAPIResponse
	reply := encoding.TunnelResponse{Payload: &res}
	require.NoError(t, codec.Decode(msg, &reply))
	return reply, &res
}

func TestHandleBazInvokesOnlyBaz(t *testing.T) {
	for _, codec := range []encoding.Codec{json.New(), msgpack.New()} {
		t.Run(codec.Name(), func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			defer mockCtrl.Finish()

			// Any call other than Baz fails the test.
			impl := testapitest.NewMockInterface(mockCtrl)
			impl.EXPECT().Baz(gomock.Any()).Return(uint32(42), nil).Times(1)

			h := dispatch.NewHandler(testapi.NewContainer(impl), codec, dispatch.WithLogger(zaptest.NewLogger(t)))
			msg := encode(t, codec, encoding.TunnelRequest{
				Ref: 5,
				Payload: encoding.CallRequest{
					Service: testapi.ServiceName,
					Call:    testapi.TestAPIRequest{Baz: &testapi.TestAPIBazArgs{}},
				},
			})

			out, err := h.Handle(context.Background(), msg)
			require.NoError(t, err)

			reply, res := decodeReply(t, codec, out)
			require.NotNil(t, reply.Ref)
			assert.Equal(t, uint64(5), *reply.Ref)
			assert.Nil(t, reply.Error)
			assert.Equal(t, "Baz", res.Variant())
			assert.Equal(t, uint32(42), *res.Baz)
		})
	}
}

func TestHandleRejectsBadRequests(t *testing.T) {
	codec := json.New()
	tests := []struct {
		desc     string
		give     string
		wantRef  uint64
		wantCode encoding.RemoteCode
	}{
		{
			desc:     "no variant",
			give:     `{"ref":1,"payload":{"service":"TestApi","call":{}}}`,
			wantRef:  1,
			wantCode: encoding.CodeBadRequest,
		},
		{
			desc:     "unknown variant",
			give:     `{"ref":2,"payload":{"service":"TestApi","call":{"Nope":{}}}}`,
			wantRef:  2,
			wantCode: encoding.CodeBadRequest,
		},
		{
			desc:     "two variants",
			give:     `{"ref":3,"payload":{"service":"TestApi","call":{"Foo":{},"Baz":{}}}}`,
			wantRef:  3,
			wantCode: encoding.CodeBadRequest,
		},
		{
			desc:     "malformed arguments",
			give:     `{"ref":4,"payload":{"service":"TestApi","call":{"Qaz":{"a0":7}}}}`,
			wantRef:  4,
			wantCode: encoding.CodeBadRequest,
		},
		{
			desc:     "unknown service",
			give:     `{"ref":5,"payload":{"service":"Other","call":{"Baz":{}}}}`,
			wantRef:  5,
			wantCode: encoding.CodeUnknownService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			defer mockCtrl.Finish()

			scope := tally.NewTestScope("", nil)
			impl := testapitest.NewMockInterface(mockCtrl)
			h := dispatch.NewHandler(testapi.NewContainer(impl), codec, dispatch.WithTally(scope))

			out, err := h.Handle(context.Background(), encoding.Message{Kind: encoding.Text, Data: []byte(tt.give)})
			require.NoError(t, err)

			reply, res := decodeReply(t, codec, out)
			require.NotNil(t, reply.Ref)
			assert.Equal(t, tt.wantRef, *reply.Ref)
			require.NotNil(t, reply.Error)
			assert.Equal(t, tt.wantCode, reply.Error.Code)
			assert.Equal(t, "", res.Variant())

			var failures int64
			for _, c := range scope.Snapshot().Counters() {
				if c.Name() == "dispatch.failures" && c.Tags()["code"] == string(tt.wantCode) {
					failures += c.Value()
				}
			}
			assert.Equal(t, int64(1), failures)
		})
	}
}

func TestHandleUnroutable(t *testing.T) {
	h := dispatch.NewHandler(testapi.NewContainer(testapi.NewServer(nil)), json.New())

	_, err := h.Handle(context.Background(), encoding.Message{Kind: encoding.Text, Data: []byte(`{`)})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), encoding.Message{Kind: encoding.Text, Data: []byte(`{"payload":[]}`)})
	assert.Error(t, err)
}

func TestHandleServiceError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	impl := testapitest.NewMockInterface(mockCtrl)
	impl.EXPECT().Baz(gomock.Any()).Return(uint32(0), errors.New("database unavailable"))

	codec := json.New()
	h := dispatch.NewHandler(testapi.NewContainer(impl), codec)

	out, err := h.Handle(context.Background(), encode(t, codec, encoding.TunnelRequest{
		Ref: 9,
		Payload: encoding.CallRequest{
			Service: testapi.ServiceName,
			Call:    testapi.TestAPIRequest{Baz: &testapi.TestAPIBazArgs{}},
		},
	}))
	require.NoError(t, err)

	reply, _ := decodeReply(t, codec, out)
	require.NotNil(t, reply.Error)
	assert.Equal(t, encoding.CodeInternal, reply.Error.Code)
	assert.Equal(t, "database unavailable", reply.Error.Message)
}

func TestHandleErrResultIsAReply(t *testing.T) {
	codec := json.New()
	h := dispatch.NewHandler(testapi.NewContainer(testapi.NewServer(nil)), codec)

	out, err := h.Handle(context.Background(), encode(t, codec, encoding.TunnelRequest{
		Ref: 9,
		Payload: encoding.CallRequest{
			Service: testapi.ServiceName,
			Call:    testapi.TestAPIRequest{Qoz: &testapi.TestAPIQozArgs{A1: 10}},
		},
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ref":9,"payload":{"Qoz":{"Err":"10 is not allowed"}}}`, string(out.Data))

	reply, res := decodeReply(t, codec, out)
	assert.Nil(t, reply.Error)
	assert.Equal(t, testapi.QozErr("10 is not allowed"), *res.Qoz)
}

// confused answers every request with a Foo response.
type confused struct{ *testapi.Container }

func (confused) Dispatch(context.Context, interface{}) (interface{}, error) {
	return &testapi.TestAPIResponse{Foo: &testapi.Unit{}}, nil
}

func TestDispatchRejectsMismatchedVariant(t *testing.T) {
	svc := confused{testapi.NewContainer(testapi.NewServer(nil))}

	_, err := dispatch.Dispatch(context.Background(), svc, &testapi.TestAPIRequest{Baz: &testapi.TestAPIBazArgs{}})
	var remote *encoding.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, encoding.CodeInternal, remote.Code)
	assert.Contains(t, remote.Message, `answered "Baz" request with "Foo" response`)

	res, err := dispatch.Dispatch(context.Background(), svc, &testapi.TestAPIRequest{Foo: &testapi.TestAPIFooArgs{}})
	require.NoError(t, err)
	assert.Equal(t, "Foo", res.(*testapi.TestAPIResponse).Variant())
}

// echo is a service whose requests are not unions.
type echo struct{}

func (echo) Name() string            { return "echo" }
func (echo) NewRequest() interface{} { return new(string) }
func (echo) Dispatch(_ context.Context, req interface{}) (interface{}, error) {
	if *req.(*string) == "" {
		return nil, errors.New("nothing to echo")
	}
	return *req.(*string), nil
}

func TestHandleNonUnionService(t *testing.T) {
	codec := json.New()
	h := dispatch.NewHandler(echo{}, codec)

	out, err := h.Handle(context.Background(), encode(t, codec, encoding.TunnelRequest{
		Ref:     1,
		Payload: encoding.CallRequest{Service: "echo", Call: "hello"},
	}))
	require.NoError(t, err)

	var res string
	reply := encoding.TunnelResponse{Payload: &res}
	require.NoError(t, codec.Decode(out, &reply))
	assert.Nil(t, reply.Error)
	assert.Equal(t, "hello", res)

	out, err = h.Handle(context.Background(), encode(t, codec, encoding.TunnelRequest{
		Ref:     2,
		Payload: encoding.CallRequest{Service: "echo", Call: ""},
	}))
	require.NoError(t, err)
	reply = encoding.TunnelResponse{}
	require.NoError(t, codec.Decode(out, &reply))
	require.NotNil(t, reply.Error)
	assert.Equal(t, "nothing to echo", reply.Error.Message)
}
