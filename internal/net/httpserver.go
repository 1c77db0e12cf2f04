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

// Package net wraps http.Server with a non-blocking lifecycle.
package net

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"go.uber.org/atomic"
)

var (
	errServerStopped    = errors.New("the server has been stopped")
	errAlreadyListening = errors.New("the server is already listening")
)

// HTTPServer wraps an http.Server to serve in the background and to stop
// it only once.
type HTTPServer struct {
	*http.Server

	lock     sync.Mutex
	listener net.Listener
	done     chan error
	stopped  atomic.Bool
}

// NewHTTPServer wraps an http.Server.
func NewHTTPServer(s *http.Server) *HTTPServer {
	return &HTTPServer{
		Server: s,
		done:   make(chan error, 1),
	}
}

// Listener returns the listener the server is serving on, or nil.
func (h *HTTPServer) Listener() net.Listener {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.listener
}

// ListenAndServe starts listening on the address of the server and serves
// in the background. It returns once the server is listening.
func (h *HTTPServer) ListenAndServe() error {
	addr := h.Server.Addr
	if addr == "" {
		addr = ":http"
	}
	return h.serve(func() (net.Listener, error) {
		return net.Listen("tcp", addr)
	})
}

// Serve serves on listener in the background.
func (h *HTTPServer) Serve(listener net.Listener) error {
	return h.serve(func() (net.Listener, error) {
		return listener, nil
	})
}

func (h *HTTPServer) serve(listen func() (net.Listener, error)) error {
	if h.stopped.Load() {
		return errServerStopped
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	if h.listener != nil {
		return errAlreadyListening
	}

	listener, err := listen()
	if err != nil {
		return err
	}

	go func(done chan<- error) {
		// Serve always returns a non-nil error. It only matters if Shutdown
		// was not called.
		err := h.Server.Serve(listener)
		if !h.stopped.Load() {
			done <- err
		} else {
			done <- nil
		}
	}(h.done)

	h.listener = listener
	return nil
}

// Shutdown gracefully stops the server and waits for Serve to return.
// Connections hijacked from the server are not tracked and must be closed
// by their owner. Shutdown may be called any number of times.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	if h.stopped.Swap(true) {
		return nil
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	if h.listener == nil {
		return nil
	}

	shutdownErr := h.Server.Shutdown(ctx)
	h.listener = nil
	serveErr := <-h.done
	if shutdownErr != nil {
		return shutdownErr
	}
	return serveErr
}
