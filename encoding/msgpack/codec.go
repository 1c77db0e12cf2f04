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

// Package msgpack provides a MessagePack codec for netfn.
//
// Messages produced by this codec are binary messages. Struct fields are
// named by their `codec` tags, falling back to `json` tags.
package msgpack

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"go.uber.org/netfn/encoding"
)

// Name is the name of this codec.
const Name = "msgpack"

var _ encoding.Codec = (*Codec)(nil)

// Codec is an encoding.Codec which produces MessagePack binary messages.
type Codec struct {
	handle *codec.MsgpackHandle
}

// New builds a MessagePack codec.
func New() *Codec {
	h := &codec.MsgpackHandle{}
	h.RawToString = true
	h.WriteExt = true
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return &Codec{handle: h}
}

// Name implements encoding.Codec#Name.
func (*Codec) Name() string { return Name }

// Encode implements encoding.Codec#Encode.
func (c *Codec) Encode(v interface{}) (encoding.Message, error) {
	var data []byte
	if err := codec.NewEncoderBytes(&data, c.handle).Encode(v); err != nil {
		return encoding.Message{}, fmt.Errorf("failed to serialize MessagePack: %v", err)
	}
	return encoding.Message{Kind: encoding.Binary, Data: data}, nil
}

// Decode implements encoding.Codec#Decode.
func (c *Codec) Decode(msg encoding.Message, v interface{}) error {
	if msg.Kind != encoding.Binary {
		return fmt.Errorf("failed to parse MessagePack: unexpected %v message", msg.Kind)
	}
	if err := codec.NewDecoderBytes(msg.Data, c.handle).Decode(v); err != nil {
		return fmt.Errorf("failed to parse MessagePack: %v", err)
	}
	return nil
}

// PartialDecode implements encoding.Codec#PartialDecode.
func (c *Codec) PartialDecode(msg encoding.Message) (encoding.Refs, error) {
	return encoding.PartialDecodeWith(c.Decode, msg)
}
