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

package netfnconfig

import (
	"fmt"
	"io"
	"os"

	"github.com/uber-go/mapdecode"
	"go.uber.org/netfn/bus"
	"go.uber.org/netfn/internal/config"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

// Option customizes how a Config is loaded.
type Option func(*loadOptions)

type loadOptions struct {
	lookup config.LookupFunc
}

// LookupVariable sets the function which resolves ${NAME} references.
// Defaults to os.LookupEnv.
func LookupVariable(f func(name string) (value string, ok bool)) Option {
	return func(o *loadOptions) {
		o.lookup = f
	}
}

// LoadYAML reads and validates a Config from YAML.
func LoadYAML(r io.Reader, opts ...Option) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return Load(data, opts...)
}

// Load decodes and validates a Config from a map[string]interface{} or
// map[interface{}]interface{}.
func Load(data interface{}, opts ...Option) (*Config, error) {
	options := loadOptions{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&options)
	}

	var cfg Config
	if err := config.DecodeInto(&cfg, data, config.InterpolateWith(options.lookup)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level is a zap logging level.
type Level zapcore.Level

// mapdecode doesn't support encoding.TextUnmarshaler so we have to do this
// manually.

// Decode implements mapdecode.Decoder.
func (l *Level) Decode(into mapdecode.Into) error {
	var s string
	if err := into(&s); err != nil {
		return fmt.Errorf("could not decode Zap log level: %v", err)
	}
	if err := (*zapcore.Level)(l).UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("could not decode Zap log level: %v", err)
	}
	return nil
}

// Delivery selects the delivery semantics of the bus.
type Delivery bus.DeliverySemantics

// Decode implements mapdecode.Decoder.
func (d *Delivery) Decode(into mapdecode.Into) error {
	var s string
	if err := into(&s); err != nil {
		return fmt.Errorf("could not decode delivery semantics: %v", err)
	}
	return (*bus.DeliverySemantics)(d).UnmarshalText([]byte(s))
}
