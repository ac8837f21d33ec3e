package core

import "fmt"

// Error is a structured error carrying a stable code and optional details.
type Error struct {
	Err     error          `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewError wraps err with a stable code and structured details.
func NewError(err error, code string, details map[string]any) *Error {
	e := &Error{Err: err, Code: code, Details: details}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}
