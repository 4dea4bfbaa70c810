package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at the API boundary.
type Kind string

const (
	KindAuth  Kind = "auth"
	KindHTTP  Kind = "http"
	KindShape Kind = "shape"
)

type Error struct {
	Kind   Kind
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Kind: KindHTTP, Status: status, Code: code, Err: err}
}

// Auth reports that no bearer token could be obtained for a call.
func Auth(err error) *Error {
	return &Error{Kind: KindAuth, Code: "unauthenticated", Err: err}
}

// IsAuth reports whether err is (or wraps) an authentication failure.
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Kind == KindAuth || e.Status == 401)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
