package ledger

import (
	"errors"
	"fmt"
)

// APIError is an error reported by the wallet service itself, as opposed to
// a transport failure.
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("ledger: api error %s", e.Code)
	}
	return fmt.Sprintf("ledger: api error %s: %s", e.Code, e.Msg)
}

// ErrNoToken is returned when a request is attempted before authentication.
var ErrNoToken = errors.New("ledger: no access token set")
