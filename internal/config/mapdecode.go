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

// Package config decodes loosely typed configuration, as parsed from YAML,
// into typed structs through mapdecode.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/uber-go/mapdecode"
)

const (
	_tagName           = "config"
	_interpolateOption = "interpolate"
)

// LookupFunc resolves a variable for interpolation.
type LookupFunc func(name string) (value string, ok bool)

// DecodeInto decodes src into dst, reading field names from `config` tags.
func DecodeInto(dst interface{}, src interface{}, opts ...mapdecode.Option) error {
	opts = append(opts, mapdecode.TagName(_tagName))
	return mapdecode.Decode(dst, src, opts...)
}

// InterpolateWith expands ${NAME} and ${NAME:default} references in string
// values of fields tagged with the interpolate option, e.g.
//
// 	URL string `config:"url,interpolate"`
//
// A reference to an unknown variable without a default is an error.
func InterpolateWith(lookup LookupFunc) mapdecode.Option {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	return mapdecode.FieldHook(func(dest reflect.StructField, srcData reflect.Value) (reflect.Value, error) {
		if !hasOption(dest.Tag.Get(_tagName), _interpolateOption) {
			return srcData, nil
		}

		// Non-string values, like an integer for an int field, are left
		// alone.
		v, ok := srcData.Interface().(string)
		if !ok {
			return srcData, nil
		}

		s, err := interpolate(v, lookup)
		if err != nil {
			return srcData, err
		}
		return reflect.ValueOf(s), nil
	})
}

func hasOption(tag, option string) bool {
	options := strings.Split(tag, ",")
	for _, o := range options[1:] {
		if o == option {
			return true
		}
	}
	return false
}

func interpolate(s string, lookup LookupFunc) (string, error) {
	if i := strings.LastIndex(s, "${"); i >= 0 && !strings.Contains(s[i:], "}") {
		return "", fmt.Errorf("failed to parse %q for interpolation: unterminated variable reference", s)
	}

	var missing []string
	out := os.Expand(s, func(ref string) string {
		name, def, hasDefault := strings.Cut(ref, ":")
		if v, ok := lookup(name); ok {
			return v
		}
		if !hasDefault {
			missing = append(missing, name)
		}
		return def
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("failed to render %q: variables not set: %s", s, strings.Join(missing, ", "))
	}
	return out, nil
}
