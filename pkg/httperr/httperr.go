// Package httperr carries validation failures from services to the HTTP layer.
package httperr

import "errors"

// BadRequestError is a validation failure, optionally tied to one input field.
type BadRequestError struct {
	field string
	msg   string
}

func NewBadRequest(msg string) error { return &BadRequestError{msg: msg} }

func NewFieldBadRequest(field string, msg string) error {
	return &BadRequestError{field: field, msg: msg}
}

func (e *BadRequestError) Error() string {
	if e.field != "" {
		return e.field + ": " + e.msg
	}
	return e.msg
}

func (e *BadRequestError) Field() string   { return e.field }
func (e *BadRequestError) Message() string { return e.msg }

// AsBadRequest unwraps err to its BadRequestError, if any.
func AsBadRequest(err error) (*BadRequestError, bool) {
	return errors.AsType[*BadRequestError](err)
}

func IsBadRequest(err error) bool {
	_, ok := AsBadRequest(err)
	return ok
}
