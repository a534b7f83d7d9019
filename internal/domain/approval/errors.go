package approval

import "errors"

// Approval domain errors
var (
	ErrItemNotFound   = errors.New("approval item not found")
	ErrItemNotPending = errors.New("approval item has already been resolved")
	ErrForbidden      = errors.New("not allowed to access this approval item")
)
