package webapp

import (
	"errors"
	"fmt"
)

// RequestError reports a request that never produced an HTTP response
// (DNS, refused connection, TLS, timeout, cancelled context).
type RequestError struct {
	Operation string
	URL       string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// LoginError reports a login rejected by the application. Only returned when
// the client was built WithLoginCheck.
type LoginError struct {
	StatusCode int
	Reason     string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login rejected: HTTP %d: %s", e.StatusCode, e.Reason)
}

// IsLoginRejected reports whether err is a *LoginError.
func IsLoginRejected(err error) bool {
	var le *LoginError
	return errors.As(err, &le)
}
