// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ScaffolderContext is the state shared by the steps of one run. It is
// created per run, owned by that run and discarded at its end; it is not
// safe for concurrent use.
type ScaffolderContext struct {
	RunID      string
	Scaffolder *Scaffolder
	// Properties carries late-bound, untyped values between steps. Producer
	// and consumer agree on key and type; last writer wins.
	Properties map[string]any

	results map[OptionHandle]any
	bound   []OptionHandle
}

// NewContext starts a run of s, which may be nil for ad-hoc pipelines.
func NewContext(s *Scaffolder) *ScaffolderContext {
	return &ScaffolderContext{
		RunID:      uuid.NewString(),
		Scaffolder: s,
		Properties: make(map[string]any),
		results:    make(map[OptionHandle]any),
	}
}

// Property returns Properties[key] as T.
func Property[T any](sc *ScaffolderContext, key string) (T, bool) {
	v, ok := sc.Properties[key].(T)
	return v, ok
}

// SetOptionResult binds the value of opt for this run.
func SetOptionResult[T OptionValue](sc *ScaffolderContext, opt *Option[T], v T) {
	sc.set(opt, v)
}

// BindOption parses raw with h and binds the result.
func (sc *ScaffolderContext) BindOption(h OptionHandle, raw any) error {
	v, err := h.Parse(raw)
	if err != nil {
		return err
	}
	sc.set(h, v)
	return nil
}

// BindDefaults binds the default of every option of the scaffolder that has
// one and is not bound yet.
func (sc *ScaffolderContext) BindDefaults() {
	if sc.Scaffolder == nil {
		return
	}
	for _, h := range sc.Scaffolder.Options {
		if _, ok := sc.results[h]; ok {
			continue
		}
		if def := h.DefaultValue(); def != nil {
			sc.set(h, def)
		}
	}
}

// BindByName binds raw to the scaffolder option named name,
// case-insensitive.
func (sc *ScaffolderContext) BindByName(name string, raw any) error {
	if sc.Scaffolder == nil {
		return errors.Errorf("no scaffolder to look up option %q", name)
	}
	h := sc.Scaffolder.Option(name)
	if h == nil {
		return errors.Errorf("scaffolder %s has no option %q", sc.Scaffolder.Name, name)
	}
	return sc.BindOption(h, raw)
}

func (sc *ScaffolderContext) set(h OptionHandle, v any) {
	if _, ok := sc.results[h]; !ok {
		sc.bound = append(sc.bound, h)
	}
	sc.results[h] = v
}

// IsBound reports whether h has a value in this run.
func (sc *ScaffolderContext) IsBound(h OptionHandle) bool {
	_, ok := sc.results[h]
	return ok
}

// BoundOptions lists bound handles in binding order.
func (sc *ScaffolderContext) BoundOptions() []OptionHandle {
	return append([]OptionHandle(nil), sc.bound...)
}

// Value returns the raw bound value of h.
func (sc *ScaffolderContext) Value(h OptionHandle) (any, bool) {
	v, ok := sc.results[h]
	return v, ok
}

// OptionResult returns the value bound to opt, or the zero T.
func OptionResult[T OptionValue](sc *ScaffolderContext, opt *Option[T]) T {
	v, _ := sc.results[opt].(T)
	return v
}

// OptionResultByName returns the value bound to the option whose external
// name matches name case-insensitively, or the zero T when nothing matches
// or the bound value is not a T.
func OptionResultByName[T any](sc *ScaffolderContext, name string) T {
	var zero T
	for _, h := range sc.bound {
		if !strings.EqualFold(h.Info().Name, name) {
			continue
		}
		if v, ok := sc.results[h].(T); ok {
			return v
		}
		return zero
	}
	return zero
}

// ActiveFlags lists, in binding order, the external names of bool options
// bound to true.
func (sc *ScaffolderContext) ActiveFlags() []string {
	var out []string
	for _, h := range sc.bound {
		if v, ok := sc.results[h].(bool); ok && v {
			out = append(out, h.Info().Name)
		}
	}
	return out
}
