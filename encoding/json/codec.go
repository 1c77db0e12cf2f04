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

package json

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/netfn/encoding"
)

// Name is the name of this codec.
const Name = "json"

var _ encoding.Codec = Codec{}

// Codec is an encoding.Codec which produces JSON text messages.
type Codec struct {
	api jsoniter.API
}

// New builds a JSON codec.
func New() Codec {
	return Codec{api: jsoniter.ConfigCompatibleWithStandardLibrary}
}

func (c Codec) json() jsoniter.API {
	if c.api == nil {
		return jsoniter.ConfigCompatibleWithStandardLibrary
	}
	return c.api
}

// Name implements encoding.Codec#Name.
func (Codec) Name() string { return Name }

// Encode implements encoding.Codec#Encode.
func (c Codec) Encode(v interface{}) (encoding.Message, error) {
	data, err := c.json().Marshal(v)
	if err != nil {
		return encoding.Message{}, marshalError{Reason: err}
	}
	return encoding.Message{Kind: encoding.Text, Data: data}, nil
}

// Decode implements encoding.Codec#Decode.
func (c Codec) Decode(msg encoding.Message, v interface{}) error {
	if msg.Kind != encoding.Text {
		return unmarshalError{Reason: fmt.Errorf("unexpected %v message", msg.Kind)}
	}
	if err := c.json().Unmarshal(msg.Data, v); err != nil {
		return unmarshalError{Reason: err}
	}
	return nil
}

// PartialDecode implements encoding.Codec#PartialDecode.
func (c Codec) PartialDecode(msg encoding.Message) (encoding.Refs, error) {
	return encoding.PartialDecodeWith(c.Decode, msg)
}
