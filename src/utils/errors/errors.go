// Socialdex error tools. Every constructor prefixes the caller's file:line.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

var (
	ErrInvalidBasketSize = stderrors.New("basket size must be greater than 0")
	ErrUnknownPlatform   = stderrors.New("unknown platform")
	ErrFetchFailed       = stderrors.New("follower fetch failed")
)

func caller() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf("%s:%d", file, line)
}

// WrapE wraps the original error with a static error message.
// Both errors stay reachable through Is and As.
func WrapE(staticErr, originalErr error) error {
	return fmt.Errorf("%s: %w: %w", caller(), staticErr, originalErr)
}

func Wrap(err error, msg string) error {
	return fmt.Errorf("%s: %w: %s", caller(), err, msg)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", caller(), err, fmt.Sprintf(format, args...))
}

// Wrapef wraps the original error with a static error and a formatted message.
func Wrapef(staticErr, originalErr error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s: %w", caller(), staticErr, fmt.Sprintf(format, args...), originalErr)
}

func New(text string) error {
	return fmt.Errorf("%s: %s", caller(), text)
}

func Newf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", caller(), fmt.Sprintf(format, args...))
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
