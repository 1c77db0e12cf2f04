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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestDecodeInto(t *testing.T) {
	type backoff struct {
		Min time.Duration `config:"min"`
		Max time.Duration `config:"max"`
	}
	type target struct {
		URL     string  `config:"url"`
		Size    int     `config:"bufferSize"`
		Backoff backoff `config:"backoff"`
	}

	var got target
	require.NoError(t, DecodeInto(&got, map[interface{}]interface{}{
		"url":        "ws://localhost:3210/",
		"bufferSize": 64,
		"backoff": map[interface{}]interface{}{
			"min": "10ms",
			"max": "1s",
		},
	}))
	assert.Equal(t, target{
		URL:     "ws://localhost:3210/",
		Size:    64,
		Backoff: backoff{Min: 10 * time.Millisecond, Max: time.Second},
	}, got)
}

func TestInterpolateWith(t *testing.T) {
	type someStruct struct {
		URL     string        `config:"url,interpolate"`
		Size    int           `config:"size,interpolate"`
		Timeout time.Duration `config:"timeout,interpolate"`

		Plain string `config:"plain"`
	}

	tests := []struct {
		desc string
		give map[string]interface{}
		env  map[string]string

		want       someStruct
		wantErrors []string
	}{
		{
			desc: "default",
			give: map[string]interface{}{"url": "ws://${HOST:localhost}:${PORT:3210}/"},
			want: someStruct{URL: "ws://localhost:3210/"},
		},
		{
			desc: "from environment",
			give: map[string]interface{}{"url": "ws://${HOST:localhost}/"},
			env:  map[string]string{"HOST": "example.com"},
			want: someStruct{URL: "ws://example.com/"},
		},
		{
			desc: "typed fields",
			give: map[string]interface{}{"size": "${SIZE}", "timeout": "${TIMEOUT:5s}"},
			env:  map[string]string{"SIZE": "12"},
			want: someStruct{Size: 12, Timeout: 5 * time.Second},
		},
		{
			desc: "non-string value",
			give: map[string]interface{}{"size": 3},
			want: someStruct{Size: 3},
		},
		{
			desc: "plain field is left alone",
			give: map[string]interface{}{"plain": "${HOST"},
			want: someStruct{Plain: "${HOST"},
		},
		{
			desc:       "unterminated",
			give:       map[string]interface{}{"url": "ws://${HOST"},
			wantErrors: []string{`failed to parse "ws://${HOST" for interpolation`},
		},
		{
			desc:       "missing variable",
			give:       map[string]interface{}{"url": "ws://${HOST}/${PATH}"},
			wantErrors: []string{"variables not set: HOST, PATH"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			var got someStruct
			err := DecodeInto(&got, tt.give, InterpolateWith(mapLookup(tt.env)))
			if len(tt.wantErrors) > 0 {
				require.Error(t, err)
				for _, msg := range tt.wantErrors {
					assert.Contains(t, err.Error(), msg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
