package utils

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAddress  = errors.New("address is empty")
	ErrInvalidAmount = errors.New("invalid amount")
)

// WrapError joins a context and a cause, each an error or a string. An empty part is dropped, and
// errors.Is matches the context when it is an error.
func WrapError(context, cause interface{}) error {
	ctx, sub := asError(context), asError(cause)
	if ctx == nil {
		return sub
	}
	if sub == nil {
		return ctx
	}
	return fmt.Errorf("%w: %v", ctx, sub)
}

func asError(v interface{}) error {
	switch t := v.(type) {
	case error:
		return t
	case string:
		if t == "" {
			return nil
		}
		return errors.New(t)
	}
	return nil
}
