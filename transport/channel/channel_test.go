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

package channel_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/examples/testapi"
	"go.uber.org/netfn/examples/testapi/testapitest"
	"go.uber.org/netfn/internal/testtime"
	"go.uber.org/netfn/transport/channel"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"
)

// listen runs l until the test ends.
func listen(t *testing.T, l *channel.Listener) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Listen(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.Equal(t, context.Canceled, <-done)
	})
}

func TestRoundTrip(t *testing.T) {
	transport, listener := channel.New(
		testapi.NewContainer(testapi.NewServer(zaptest.NewLogger(t))), 128,
		channel.WithLogger(zaptest.NewLogger(t)))
	listen(t, listener)

	client := testapi.NewClient(transport)
	ctx := context.Background()

	require.NoError(t, client.Foo(ctx))
	require.NoError(t, client.Bar(ctx, true))

	baz, err := client.Baz(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), baz)

	qaz, err := client.Qaz(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, qaz)

	qoz, err := client.Qoz(ctx, map[string]string{"hello": "world", "bye": "world"}, 9)
	require.NoError(t, err)
	assert.Equal(t, testapi.QozOk(true), qoz)

	qoz, err = client.Qoz(ctx, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, testapi.QozErr("10 is not allowed"), qoz)
}

func TestServiceError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	impl := testapitest.NewMockInterface(mockCtrl)
	impl.EXPECT().Baz(gomock.Any()).Return(uint32(0), errors.New("database unavailable"))

	transport, listener := channel.New(testapi.NewContainer(impl), 1)
	listen(t, listener)

	_, err := testapi.NewClient(transport).Baz(context.Background())
	var remote *encoding.RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	assert.Equal(t, encoding.CodeInternal, remote.Code)
	assert.Equal(t, "database unavailable", remote.Message)
}

func TestConcurrentCalls(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	const n = 50
	impl := testapitest.NewMockInterface(mockCtrl)
	impl.EXPECT().Qaz(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, inp string) ([]string, error) {
			return []string{inp}, nil
		}).Times(n)

	transport, listener := channel.New(testapi.NewContainer(impl), 4)
	listen(t, listener)
	client := testapi.NewClient(transport)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		inp := fmt.Sprint(i)
		g.Go(func() error {
			res, err := client.Qaz(context.Background(), inp)
			if err != nil {
				return err
			}
			if len(res) != 1 || res[0] != inp {
				return fmt.Errorf("call %v got reply %v", inp, res)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestUnknownService(t *testing.T) {
	transport, _ := channel.New(testapi.NewContainer(testapi.NewServer(nil)), 1)

	var res testapi.TestAPIResponse
	err := transport.Call(context.Background(), "Other", &testapi.TestAPIRequest{Baz: &testapi.TestAPIBazArgs{}}, &res)

	var remote *encoding.RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	assert.Equal(t, encoding.CodeUnknownService, remote.Code)
}

func TestRequestWithoutVariant(t *testing.T) {
	transport, listener := channel.New(testapi.NewContainer(testapi.NewServer(nil)), 1)
	listen(t, listener)

	var res testapi.TestAPIResponse
	err := transport.Call(context.Background(), testapi.ServiceName, &testapi.TestAPIRequest{}, &res)

	var remote *encoding.RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	assert.Equal(t, encoding.CodeBadRequest, remote.Code)
}

func TestCallWithoutListener(t *testing.T) {
	transport, _ := channel.New(testapi.NewContainer(testapi.NewServer(nil)), 0)

	ctx, cancel := testtime.Context(10 * testtime.Millisecond)
	defer cancel()

	_, err := testapi.NewClient(transport).Baz(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestStoppedListener(t *testing.T) {
	transport, listener := channel.New(testapi.NewContainer(testapi.NewServer(nil)), 4)
	client := testapi.NewClient(transport)

	// Likely queued before the listener runs.
	queued := make(chan error, 1)
	go func() {
		_, err := client.Baz(context.Background())
		queued <- err
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, listener.Listen(ctx))

	// The queued call may have been dispatched with its live context or
	// failed by the drain, depending on which case Listen picked first.
	if err := <-queued; err != nil {
		assert.Equal(t, channel.ErrStopped, err)
	}

	_, err := client.Baz(context.Background())
	assert.Equal(t, channel.ErrStopped, err)
	assert.Equal(t, channel.ErrStopped, listener.Listen(context.Background()))
}

func TestListenAfterStop(t *testing.T) {
	_, listener := channel.New(testapi.NewContainer(testapi.NewServer(nil)), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, listener.Listen(ctx))

	for i := 0; i < 2; i++ {
		assert.Equal(t, channel.ErrStopped, listener.Listen(context.Background()))
	}
}

func TestListenerBusy(t *testing.T) {
	transport, listener := channel.New(testapi.NewContainer(testapi.NewServer(nil)), 0)
	listen(t, listener)

	// A reply means the listener is running.
	_, err := testapi.NewClient(transport).Baz(context.Background())
	require.NoError(t, err)

	assert.Equal(t, channel.ErrListenerBusy, listener.Listen(context.Background()))
}

func TestResponseTypeMismatch(t *testing.T) {
	transport, listener := channel.New(testapi.NewContainer(testapi.NewServer(nil)), 1)
	listen(t, listener)

	var res string
	err := transport.Call(context.Background(), testapi.ServiceName,
		&testapi.TestAPIRequest{Baz: &testapi.TestAPIBazArgs{}}, &res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot use response of type *testapi.TestAPIResponse as string")

	err = transport.Call(context.Background(), testapi.ServiceName,
		&testapi.TestAPIRequest{Baz: &testapi.TestAPIBazArgs{}}, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response must be a non-nil pointer")
}
