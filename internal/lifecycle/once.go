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

// Package lifecycle runs the start and stop routines of long lived
// components, like outbounds with a reconnect loop, at most once each.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

// State of a component managed by Once.
type State int32

const (
	// Idle means Start has not been called.
	Idle State = iota

	// Starting means the start routine is running.
	Starting

	// Running means the start routine succeeded.
	Running

	// Stopping means the stop routine is running.
	Stopping

	// Stopped means the stop routine finished, or Stop was called before
	// Start.
	Stopped

	// Errored means the start or stop routine failed.
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ErrNotRunning is returned by WaitUntilRunning if the component will never
// run.
var ErrNotRunning = errors.New("component is not running")

// Once moves a component forward through its states. The state never goes
// back, Start and Stop run their routines at most once, and a Stop that
// comes first pre-empts Start.
type Once struct {
	startCh    chan struct{}
	stoppingCh chan struct{}
	stopCh     chan struct{}

	// errMu guards err, the result of the start or stop routine.
	errMu sync.Mutex
	err   error

	state atomic.Int32
}

// NewOnce returns a new Once in the Idle state.
func NewOnce() *Once {
	return &Once{
		startCh:    make(chan struct{}),
		stoppingCh: make(chan struct{}),
		stopCh:     make(chan struct{}),
	}
}

// Start runs f if this is the first call to Start and Stop has not been
// called. Every call returns the error of that run.
func (o *Once) Start(f func() error) error {
	if o.state.CompareAndSwap(int32(Idle), int32(Starting)) {
		var err error
		if f != nil {
			err = f()
		}

		if err != nil {
			o.setError(err)
			o.state.Store(int32(Errored))
			close(o.stoppingCh)
			close(o.stopCh)
		} else {
			o.state.Store(int32(Running))
		}
		close(o.startCh)
		return err
	}

	<-o.startCh
	return o.loadError()
}

// Stop runs f if the component is running and this is the first call to
// Stop. Every call returns the error of that run.
func (o *Once) Stop(f func() error) error {
	if o.state.CompareAndSwap(int32(Idle), int32(Stopped)) {
		close(o.startCh)
		close(o.stoppingCh)
		close(o.stopCh)
		return nil
	}

	<-o.startCh

	if o.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		close(o.stoppingCh)

		var err error
		if f != nil {
			err = f()
		}

		if err != nil {
			o.setError(err)
			o.state.Store(int32(Errored))
		} else {
			o.state.Store(int32(Stopped))
		}
		close(o.stopCh)
		return err
	}

	<-o.stopCh
	return o.loadError()
}

// WaitUntilRunning blocks until the component is running or ctx is done.
func (o *Once) WaitUntilRunning(ctx context.Context) error {
	select {
	case <-o.startCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	if s := o.State(); s != Running {
		return fmt.Errorf("%w: state is %v", ErrNotRunning, s)
	}
	return nil
}

// Started returns a channel that is closed once Start has finished or
// Stop pre-empted it.
func (o *Once) Started() <-chan struct{} { return o.startCh }

// Stopping returns a channel that is closed once stopping has begun.
func (o *Once) Stopping() <-chan struct{} { return o.stoppingCh }

// Stopped returns a channel that is closed once the component stopped.
func (o *Once) Stopped() <-chan struct{} { return o.stopCh }

// State returns the current state. The component may have moved on by the
// time the caller looks at it.
func (o *Once) State() State {
	return State(o.state.Load())
}

// IsRunning reports whether the component is running.
func (o *Once) IsRunning() bool {
	return o.State() == Running
}

func (o *Once) setError(err error) {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	o.err = err
}

func (o *Once) loadError() error {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	return o.err
}
