package tracker

import "fmt"

// APIError carries the tracker's HTTP status and raw response body. The
// tracker has no idempotency of its own, so callers must decide whether a
// failed call may be repeated.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker API error: %d - %s", e.Status, e.Body)
}
