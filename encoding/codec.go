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

// Package encoding defines the contract between the correlation bus and the
// wire codecs, along with the envelopes every codec must be able to carry.
//
// A Codec turns typed values into opaque Messages and back. Besides full
// encoding and decoding, a Codec must support a partial decode which reads
// only the routing fields of an envelope (the correlation ref and the stream
// handle) without knowing the payload type. The bus relies on this to find
// the pending call that an inbound message belongs to before anyone knows
// what type to decode it into.
package encoding

import "fmt"

// Kind is the framing kind of a Message. It mirrors the text and binary
// frame types of message-oriented transports like WebSockets.
type Kind uint8

const (
	// Text messages carry UTF-8 encoded payloads, like JSON.
	Text Kind = iota + 1

	// Binary messages carry arbitrary bytes, like MessagePack.
	Binary
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Message is an encoded envelope as it travels over the wire.
type Message struct {
	Kind Kind
	Data []byte
}

// Refs holds the routing metadata extracted from a Message by a partial
// decode. Either field may be nil.
type Refs struct {
	// Ref is the correlation ID of the call the message answers.
	Ref *uint64

	// Handle identifies an already established stream.
	Handle *uint64
}

// Codec encodes and decodes values to and from Messages.
//
// Implementations must be safe for concurrent use and must not retain the
// Message they were given.
type Codec interface {
	// Name of the codec, for logging and configuration.
	Name() string

	// Encode serializes v into a Message.
	Encode(v interface{}) (Message, error)

	// Decode deserializes msg into v, which must be a pointer.
	Decode(msg Message, v interface{}) error

	// PartialDecode extracts only the envelope routing fields from msg.
	PartialDecode(msg Message) (Refs, error)
}
