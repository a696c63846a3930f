package hydra

import (
	"errors"
	"fmt"
)

// Gateway errors
var (
	// ErrSessionExpired is returned before any network call when no usable
	// access token is stored. The local session is cleared as a side effect.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionEnded is returned when the refresh-and-retry protocol gives
	// up: the refresh attempt failed, or the retried call was rejected
	// again. The session is torn down before this is returned.
	ErrSessionEnded = errors.New("session ended")
)

// StatusError carries a non-2xx response unmodified to the caller. The
// gateway does not interpret or mask these; presentation decides messaging.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("request failed with status %d: %s", e.Code, string(e.Body))
	}
	return fmt.Sprintf("request failed with status %d", e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
