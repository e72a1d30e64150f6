// Package validation holds fail-fast guards for constructor arguments.
// They panic: a missing dependency is a wiring bug, not a runtime condition.
package validation

import (
	"fmt"
	"reflect"
)

// AssertNotNil panics if ptr is nil.
//
//	validation.AssertNotNil(cfg, "server config")
func AssertNotNil[T any](ptr *T, name string) {
	if ptr == nil {
		panic(fmt.Sprintf("critical error: %s cannot be nil", name))
	}
}

// AssertPresent panics if dep is nil, including a nil pointer, map, slice,
// func or channel stored in an interface.
func AssertPresent(dep any, name string) {
	if isNil(dep) {
		panic(fmt.Sprintf("critical error: %s cannot be nil", name))
	}
}

// Assert panics with the formatted message when ok is false.
//
//	validation.Assert(h.Supports(ruleType), "handler %T does not support %q", h, ruleType)
func Assert(ok bool, format string, args ...any) {
	if !ok {
		panic("critical error: " + fmt.Sprintf(format, args...))
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
