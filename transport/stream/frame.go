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

package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.uber.org/netfn/encoding"
	"go.uber.org/netfn/internal/bufferpool"
)

const _headerSize = 5 // len:4 kind:1

// ErrFrameTooLarge is returned when a frame exceeds the maximum frame size.
var ErrFrameTooLarge = errors.New("frame too large")

// writeFrame writes msg to w using the format:
//
// 	len:4 kind:1 data~len
//
// The whole frame is written with a single call to Write.
func writeFrame(w io.Writer, msg encoding.Message, maxSize int) error {
	if len(msg.Data) > maxSize {
		return fmt.Errorf("cannot write %d bytes: %w", len(msg.Data), ErrFrameTooLarge)
	}
	switch msg.Kind {
	case encoding.Text, encoding.Binary:
	default:
		return fmt.Errorf("cannot write %v message", msg.Kind)
	}

	buf := bufferpool.Get()
	defer bufferpool.Put(buf)

	var header [_headerSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(msg.Data))) // len:4
	header[4] = byte(msg.Kind)                                   // kind:1
	buf.Write(header[:])
	buf.Write(msg.Data) // data~len

	_, err := w.Write(buf.Bytes())
	return err
}

// readFrame reads a frame written by writeFrame. It returns io.EOF only if
// r ended cleanly between two frames.
func readFrame(r io.Reader, maxSize int) (encoding.Message, error) {
	var header [_headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return encoding.Message{}, err
	}

	size := binary.BigEndian.Uint32(header[:4])
	if uint64(size) > uint64(maxSize) {
		return encoding.Message{}, fmt.Errorf("cannot read %d bytes: %w", size, ErrFrameTooLarge)
	}

	kind := encoding.Kind(header[4])
	switch kind {
	case encoding.Text, encoding.Binary:
	default:
		return encoding.Message{}, fmt.Errorf("unknown frame kind %d", header[4])
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return encoding.Message{}, err
	}
	return encoding.Message{Kind: kind, Data: data}, nil
}
