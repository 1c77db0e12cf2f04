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

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestStartStop(t *testing.T) {
	o := NewOnce()
	assert.Equal(t, Idle, o.State())

	var starts, stops atomic.Int32
	start := func() error { starts.Inc(); return nil }
	stop := func() error { stops.Inc(); return nil }

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, o.Start(start))
		}()
	}
	wg.Wait()

	assert.True(t, o.IsRunning())
	require.NoError(t, o.WaitUntilRunning(context.Background()))

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, o.Stop(stop))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), starts.Load())
	assert.Equal(t, int32(1), stops.Load())
	assert.Equal(t, Stopped, o.State())

	select {
	case <-o.Stopped():
	default:
		t.Fatal("Stopped channel was not closed")
	}
}

func TestStopBeforeStart(t *testing.T) {
	o := NewOnce()
	require.NoError(t, o.Stop(func() error {
		t.Fatal("stop routine must not run for an idle component")
		return nil
	}))

	assert.NoError(t, o.Start(func() error {
		t.Fatal("start routine must not run after Stop")
		return nil
	}))
	assert.Equal(t, Stopped, o.State())
	assert.ErrorIs(t, o.WaitUntilRunning(context.Background()), ErrNotRunning)
}

func TestStartError(t *testing.T) {
	o := NewOnce()
	err := errors.New("great sadness")

	assert.Equal(t, err, o.Start(func() error { return err }))
	assert.Equal(t, err, o.Start(nil), "later calls return the first error")
	assert.Equal(t, Errored, o.State())
	assert.Equal(t, err, o.Stop(nil))
}

func TestStopError(t *testing.T) {
	o := NewOnce()
	require.NoError(t, o.Start(nil))

	err := errors.New("stuck")
	assert.Equal(t, err, o.Stop(func() error { return err }))
	assert.Equal(t, Errored, o.State())
}

func TestWaitUntilRunningTimeout(t *testing.T) {
	o := NewOnce()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, o.WaitUntilRunning(ctx))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "State(42)", State(42).String())
}
