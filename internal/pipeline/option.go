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
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// OptionKind is the value type of an option.
type OptionKind string

const (
	KindString OptionKind = "string"
	KindBool   OptionKind = "bool"
	KindInt    OptionKind = "int"
)

// OptionInfo is the caller-facing description of an option.
type OptionInfo struct {
	// Name is the external, CLI-facing name.
	Name        string
	Description string
	Required    bool
	// Picker hints how an interactive caller should select a value, e.g.
	// "directory" or "file".
	Picker string
}

// OptionHandle identifies one declared option. Handles compare by identity.
type OptionHandle interface {
	Info() OptionInfo
	Kind() OptionKind
	// DefaultValue is nil when the option has no default.
	DefaultValue() any
	// Parse converts a raw caller value (usually a string) to the option's
	// type.
	Parse(raw any) (any, error)
}

// OptionValue constrains the types an Option can carry.
type OptionValue interface {
	string | bool | int
}

// Option is a typed option handle.
type Option[T OptionValue] struct {
	OptionInfo
	Default    T
	HasDefault bool
}

// NewOption declares an option without a default.
func NewOption[T OptionValue](info OptionInfo) *Option[T] {
	return &Option[T]{OptionInfo: info}
}

// WithDefault sets the default value.
func (o *Option[T]) WithDefault(v T) *Option[T] {
	o.Default = v
	o.HasDefault = true
	return o
}

// Info implements OptionHandle.
func (o *Option[T]) Info() OptionInfo { return o.OptionInfo }

// Kind implements OptionHandle.
func (o *Option[T]) Kind() OptionKind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return KindBool
	case int:
		return KindInt
	default:
		return KindString
	}
}

// DefaultValue implements OptionHandle.
func (o *Option[T]) DefaultValue() any {
	if !o.HasDefault {
		return nil
	}
	return o.Default
}

// Parse implements OptionHandle.
func (o *Option[T]) Parse(raw any) (any, error) {
	if v, ok := raw.(T); ok {
		return v, nil
	}
	var (
		v   any
		err error
	)
	switch o.Kind() {
	case KindBool:
		v, err = cast.ToBoolE(raw)
	case KindInt:
		v, err = cast.ToIntE(raw)
	default:
		v, err = cast.ToStringE(raw)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "option %s: want %s", o.Name, o.Kind())
	}
	return v.(T), nil
}
