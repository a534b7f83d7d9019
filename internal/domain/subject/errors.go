package subject

import "errors"

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrSubjectInactive = errors.New("subject is not active")
)
