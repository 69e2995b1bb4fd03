//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

package media

import (
	"strings"
)

// FieldKind is the value type of an option field.
type FieldKind int

const (
	// KindString is a free or enumerated string option.
	KindString FieldKind = iota
	// KindInt is an integer option, enumerated or range-checked.
	KindInt
	// KindFloat is a float option, range-checked.
	KindFloat
	// KindBool is a boolean flag option.
	KindBool
)

// Range is an inclusive numeric range. Max <= Min means unbounded above.
type Range struct {
	Min float64
	Max float64
}

// Field describes one option recognized by a provider: its value type, the
// allowed values and the documented default. A nil Default means the option
// is optional and stays absent when not supplied.
type Field struct {
	Kind    FieldKind
	Enum    []string
	IntEnum []int
	Range   *Range
	Default any
}

// Rule is a documented cross-field constraint. Check returns a non-empty
// violation description when the (already defaulted) options break the rule.
type Rule struct {
	Name  string
	Check func(Options) string
}

// OptionSpec is the static option table of one provider/capability pair.
// Loaded at process start, never mutated.
type OptionSpec struct {
	Fields map[string]Field
	Rules  []Rule
}

// Normalize returns a fully-defaulted, range-checked copy of opts or fails
// with ErrInvalidOption / ErrInvalidOptionCombination. It performs no I/O.
func (s *OptionSpec) Normalize(opts Options) (Options, error) {
	out := opts.Clone()
	if out == nil {
		out = make(Options)
	}
	for key := range out {
		if _, ok := s.Fields[key]; !ok {
			return nil, InvalidOptionf("unrecognized option %q", key)
		}
	}
	for name, field := range s.Fields {
		value, ok := out[name]
		if !ok || value == nil {
			if field.Default != nil {
				out[name] = field.Default
			} else {
				delete(out, name)
			}
			continue
		}
		normalized, err := field.check(name, value)
		if err != nil {
			return nil, err
		}
		out[name] = normalized
	}
	for _, rule := range s.Rules {
		if msg := rule.Check(out); msg != "" {
			return nil, InvalidCombinationf("%s", msg)
		}
	}
	return out, nil
}

// check validates a supplied value against the field and returns it coerced
// to the canonical Go type for its kind.
func (f Field) check(name string, value any) (any, error) {
	switch f.Kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return nil, InvalidOptionf("option %q expects a string, got %T", name, value)
		}
		if len(f.Enum) > 0 && !containsString(f.Enum, s) {
			return nil, InvalidOptionf("option %q value %q not in [%s]",
				name, s, strings.Join(f.Enum, ", "))
		}
		return s, nil
	case KindInt:
		n, ok := toInt(value)
		if !ok {
			return nil, InvalidOptionf("option %q expects an integer, got %v", name, value)
		}
		if len(f.IntEnum) > 0 && !containsInt(f.IntEnum, n) {
			return nil, InvalidOptionf("option %q value %d not in %v", name, n, f.IntEnum)
		}
		if f.Range != nil {
			if err := f.Range.contains(name, float64(n)); err != nil {
				return nil, err
			}
		}
		return n, nil
	case KindFloat:
		x, ok := toFloat(value)
		if !ok {
			return nil, InvalidOptionf("option %q expects a number, got %v", name, value)
		}
		if f.Range != nil {
			if err := f.Range.contains(name, x); err != nil {
				return nil, err
			}
		}
		return x, nil
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, InvalidOptionf("option %q expects a boolean, got %T", name, value)
		}
		return b, nil
	}
	return nil, InvalidOptionf("option %q has unknown kind", name)
}

func (r *Range) contains(name string, x float64) error {
	if x < r.Min {
		return InvalidOptionf("option %q value %v below minimum %v", name, x, r.Min)
	}
	if r.Max > r.Min && x > r.Max {
		return InvalidOptionf("option %q value %v above maximum %v", name, x, r.Max)
	}
	return nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(values []int, n int) bool {
	for _, v := range values {
		if v == n {
			return true
		}
	}
	return false
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
