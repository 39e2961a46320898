package converting

import "strings"

// If nil returns the default value for the type
func Unwrap[T any](x *T) (r T) {
	if x != nil {
		r = *x
	}

	return
}

func PointerToValue[T any](v T) *T {
	return &v
}

// NilIfBlank maps optional text input to an absent value when nothing but spaces was entered.
func NilIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
