package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both resources that do not exist and resources owned by
// another session. Handlers turn it into a 404 without distinguishing the two,
// so existence of other sessions' data is never leaked.
var ErrNotFound = errors.New("not found")

// ValidationError is bad input or a failed business rule (stock, price,
// required field). The message is safe to return to the client.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
