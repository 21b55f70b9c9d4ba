// Package assert guards constructor preconditions, a violation is a
// programming error so it panics instead of returning an error.
package assert

import "fmt"

// NotNil panics when `value` is a nil interface.
func NotNil(value any, name string) {
	if value == nil {
		panic(fmt.Sprintf("expected %s to be not nil", name))
	}
}

// NotEmptyStr panics when `str` is empty.
func NotEmptyStr(str string, name string) {
	if str == "" {
		panic(fmt.Sprintf("expected %s to be a non-empty string", name))
	}
}
