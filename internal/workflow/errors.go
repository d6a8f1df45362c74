package workflow

import "errors"

var (
	// ErrBusy rejects an action while the same slot is fetching or submitting.
	ErrBusy = errors.New("another action is in progress")
	// ErrNoWork means the source has no sentence waiting for a label.
	ErrNoWork = errors.New("no sentences waiting for a label")
)
