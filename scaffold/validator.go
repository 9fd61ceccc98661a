/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package scaffold

import (
	"fmt"
	"path"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ValidateName checks a scaffold name:
//   - 1-64 characters of lowercase letters, digits and hyphens
//   - no leading, trailing or consecutive hyphens
//   - equal to the name of its directory
func ValidateName(name, dirName string) error {
	if name == "" {
		return errors.New("scaffold name cannot be empty")
	}
	if len(name) > 64 {
		return errors.Errorf("scaffold name must be 1-64 characters, got %d", len(name))
	}
	for _, r := range name {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) && r != '-' {
			return errors.Errorf("scaffold name can only contain lowercase letters, digits and hyphens, got '%c'", r)
		}
	}
	if strings.HasPrefix(name, "-") {
		return errors.New("scaffold name cannot start with hyphen")
	}
	if strings.HasSuffix(name, "-") {
		return errors.New("scaffold name cannot end with hyphen")
	}
	if strings.Contains(name, "--") {
		return errors.New("scaffold name cannot contain consecutive hyphens")
	}
	if base := path.Base(dirName); name != base {
		return errors.Errorf("scaffold name '%s' must match directory name '%s'", name, base)
	}
	return nil
}

// ValidateDescription checks a scaffold description is 1-1024 characters.
func ValidateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return errors.New("scaffold description cannot be empty")
	}
	if len(desc) > 1024 {
		return errors.Errorf("scaffold description must be 1-1024 characters, got %d", len(desc))
	}
	return nil
}

// DefinitionError lists every problem of one definition.
type DefinitionError struct {
	Path     string
	Problems []string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid scaffold %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks def against its directory name dir.
func Validate(def *Definition, dir string) error {
	var problems []string
	if err := ValidateName(def.Name, dir); err != nil {
		problems = append(problems, err.Error())
	}
	if err := ValidateDescription(def.Description); err != nil {
		problems = append(problems, err.Error())
	}

	if err := structValidator().Struct(def); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			field := strings.TrimPrefix(fe.Namespace(), "Definition.")
			if fe.Param() != "" {
				problems = append(problems, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
			} else {
				problems = append(problems, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
			}
		}
	}

	seen := make(map[string]bool)
	for _, o := range def.Options {
		key := strings.ToLower(o.Name)
		if seen[key] {
			problems = append(problems, fmt.Sprintf("option %q declared twice", o.Name))
		}
		seen[key] = true
		if o.Name != "" && !validOptionName(o.Name) {
			problems = append(problems, fmt.Sprintf("option %q: name must start with a letter and contain only letters, digits, '-' or '_'", o.Name))
		}
		if o.Default != nil {
			if _, err := coerce(o.Type, o.Default); err != nil {
				problems = append(problems, fmt.Sprintf("option %q: default: %v", o.Name, err))
			}
		}
	}
	if len(problems) > 0 {
		return &DefinitionError{Path: dir, Problems: problems}
	}
	return nil
}

func validOptionName(name string) bool {
	for i, r := range name {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '_'):
		default:
			return false
		}
	}
	return true
}

// coerce converts a YAML default to the Go type of the option kind.
func coerce(kind string, v any) (any, error) {
	switch kind {
	case "bool":
		return cast.ToBoolE(v)
	case "int":
		return cast.ToIntE(v)
	default:
		return cast.ToStringE(v)
	}
}
