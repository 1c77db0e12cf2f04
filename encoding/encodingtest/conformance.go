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

// Package encodingtest provides a conformance suite for encoding.Codec
// implementations.
package encodingtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/netfn/encoding"
)

// Args is a payload exercising the field types codecs must round trip.
type Args struct {
	Name  string            `json:"name" codec:"name"`
	Count int16             `json:"count" codec:"count"`
	Flag  bool              `json:"flag" codec:"flag"`
	Tags  []string          `json:"tags,omitempty" codec:"tags,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty" codec:"attrs,omitempty"`
	Next  *Args             `json:"next,omitempty" codec:"next,omitempty"`
}

// RunConformance checks that codec satisfies the encoding.Codec contract.
func RunConformance(t *testing.T, codec encoding.Codec) {
	t.Run("round trip", func(t *testing.T) {
		tests := []struct {
			desc string
			give Args
		}{
			{desc: "zero", give: Args{}},
			{
				desc: "scalars",
				give: Args{Name: "hello", Count: -9, Flag: true},
			},
			{
				desc: "collections",
				give: Args{
					Tags:  []string{"a", "b"},
					Attrs: map[string]string{"hello": "world", "bye": "world"},
				},
			},
			{
				desc: "nested",
				give: Args{Name: "outer", Next: &Args{Name: "inner", Count: 10}},
			},
		}

		for _, tt := range tests {
			t.Run(tt.desc, func(t *testing.T) {
				msg, err := codec.Encode(tt.give)
				require.NoError(t, err)

				var got Args
				require.NoError(t, codec.Decode(msg, &got))
				assert.Equal(t, tt.give, got)
			})
		}
	})

	t.Run("request envelope", func(t *testing.T) {
		msg, err := codec.Encode(encoding.TunnelRequest{
			Ref: 42,
			Payload: encoding.CallRequest{
				Service: "TestApi",
				Call:    Args{Name: "call"},
			},
		})
		require.NoError(t, err)

		var call Args
		req := encoding.TunnelRequest{Payload: encoding.CallRequest{Call: &call}}
		require.NoError(t, codec.Decode(msg, &req))
		assert.Equal(t, uint64(42), req.Ref)
		assert.Equal(t, "TestApi", req.Payload.Service)
		assert.Equal(t, Args{Name: "call"}, call)

		refs, err := codec.PartialDecode(msg)
		require.NoError(t, err)
		require.NotNil(t, refs.Ref)
		assert.Equal(t, uint64(42), *refs.Ref)
		assert.Nil(t, refs.Handle)
	})

	t.Run("response envelope", func(t *testing.T) {
		msg, err := codec.Encode(encoding.TunnelResponse{
			Ref:     encoding.Uint64(7),
			Payload: Args{Name: "result", Count: 3},
		})
		require.NoError(t, err)

		refs, err := codec.PartialDecode(msg)
		require.NoError(t, err)
		require.NotNil(t, refs.Ref)
		assert.Equal(t, uint64(7), *refs.Ref)
		assert.Nil(t, refs.Handle)

		var result Args
		res := encoding.TunnelResponse{Payload: &result}
		require.NoError(t, codec.Decode(msg, &res))
		assert.Nil(t, res.Error)
		assert.Equal(t, Args{Name: "result", Count: 3}, result)
	})

	t.Run("remote error", func(t *testing.T) {
		msg, err := codec.Encode(encoding.TunnelResponse{
			Ref:   encoding.Uint64(1),
			Error: &encoding.RemoteError{Code: encoding.CodeInternal, Message: "great sadness"},
		})
		require.NoError(t, err)

		var res encoding.TunnelResponse
		require.NoError(t, codec.Decode(msg, &res))
		require.NotNil(t, res.Error)
		assert.Equal(t, encoding.CodeInternal, res.Error.Code)
		assert.Equal(t, "great sadness", res.Error.Message)
	})

	t.Run("stream handle", func(t *testing.T) {
		msg, err := codec.Encode(encoding.TunnelResponse{Handle: encoding.Uint64(12)})
		require.NoError(t, err)

		refs, err := codec.PartialDecode(msg)
		require.NoError(t, err)
		assert.Nil(t, refs.Ref)
		require.NotNil(t, refs.Handle)
		assert.Equal(t, uint64(12), *refs.Handle)
	})

	t.Run("garbage", func(t *testing.T) {
		msg, err := codec.Encode(Args{})
		require.NoError(t, err)
		msg.Data = []byte{0xc1, '{', 0xff}

		_, err = codec.PartialDecode(msg)
		assert.Error(t, err)
	})

	t.Run("wrong kind", func(t *testing.T) {
		msg, err := codec.Encode(Args{})
		require.NoError(t, err)
		if msg.Kind == encoding.Text {
			msg.Kind = encoding.Binary
		} else {
			msg.Kind = encoding.Text
		}

		var got Args
		assert.Error(t, codec.Decode(msg, &got))
	})
}
