package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Download workflow sentinels. Each maps to a stable top-level error string
// so the frontend can branch on the kind instead of parsing prose.
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotReady               = errors.New("download not ready")
	ErrDenied                 = errors.New("download denied")
	ErrTransientStore         = errors.New("transient store failure")
)

// NewInvalidStateTransitionError reports an attempt to move a request out of
// a terminal state. The only legal transitions are pending to approved and
// pending to rejected.
func NewInvalidStateTransitionError(current, requested string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrInvalidStateTransition,
		Details:    fmt.Sprintf("cannot move request from '%s' to '%s'", current, requested),
		Field:      "status",
	}
}

// NewNotReadyError reports a fulfillment attempt on a still-pending request.
func NewNotReadyError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrNotReady,
		Details:    "the request has not been approved yet",
		Field:      "status",
	}
}

// NewDeniedError reports a fulfillment attempt on a rejected request.
func NewDeniedError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrDenied,
		Details:    "the request was rejected",
		Field:      "status",
	}
}

// NewTransientStoreError wraps a store failure that is safe to retry with the
// conditional-update discipline. Escalated only after bounded retries.
func NewTransientStoreError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrTransientStore,
		Details:    fmt.Sprintf("store unavailable during %s", operation),
		Cause:      cause,
	}
}

func IsInvalidStateTransition(err error) bool {
	return errors.Is(err, ErrInvalidStateTransition)
}

func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}

func IsDenied(err error) bool {
	return errors.Is(err, ErrDenied)
}

func IsTransientStore(err error) bool {
	return errors.Is(err, ErrTransientStore)
}
