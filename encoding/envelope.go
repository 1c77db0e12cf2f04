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

package encoding

import "fmt"

// TunnelRequest is the envelope of a call sent over a multiplexed
// connection.
type TunnelRequest struct {
	Ref     uint64      `json:"ref" codec:"ref"`
	Payload CallRequest `json:"payload" codec:"payload"`
}

// CallRequest names the service being called and carries the request union.
type CallRequest struct {
	Service string      `json:"service" codec:"service"`
	Call    interface{} `json:"call" codec:"call"`
}

// TunnelResponse is the envelope of a reply, or of a stream message when
// Handle is set instead of Ref.
type TunnelResponse struct {
	Ref     *uint64      `json:"ref,omitempty" codec:"ref,omitempty"`
	Handle  *uint64      `json:"handle,omitempty" codec:"handle,omitempty"`
	Payload interface{}  `json:"payload,omitempty" codec:"payload,omitempty"`
	Error   *RemoteError `json:"error,omitempty" codec:"error,omitempty"`
}

// RemoteError is a failure reported by the remote service in place of a
// response payload.
type RemoteError struct {
	Code    RemoteCode `json:"code" codec:"code"`
	Message string     `json:"message" codec:"message"`
}

// RemoteCode classifies a RemoteError.
type RemoteCode string

const (
	// CodeBadRequest means the peer could not understand the request.
	CodeBadRequest RemoteCode = "bad-request"

	// CodeUnknownService means the request named a service the peer does
	// not serve.
	CodeUnknownService RemoteCode = "unknown-service"

	// CodeInternal means the service failed while handling the request.
	CodeInternal RemoteCode = "internal"
)

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: code:%s message:%s", e.Code, e.Message)
}

// partialRefs is decoded by codecs to implement PartialDecode. The payload
// is deliberately absent.
type partialRefs struct {
	Ref    *uint64 `json:"ref" codec:"ref"`
	Handle *uint64 `json:"handle" codec:"handle"`
}

// PartialDecodeWith implements Codec.PartialDecode for codecs whose Decode
// tolerates unknown fields: it decodes msg into a struct holding only the
// routing fields.
func PartialDecodeWith(decode func(Message, interface{}) error, msg Message) (Refs, error) {
	var p partialRefs
	if err := decode(msg, &p); err != nil {
		return Refs{}, err
	}
	return Refs{Ref: p.Ref, Handle: p.Handle}, nil
}

// Uint64 returns a pointer to v.
func Uint64(v uint64) *uint64 {
	return &v
}
