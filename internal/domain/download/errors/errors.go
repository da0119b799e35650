package errors

import "errors"

var (
	ErrNoTarget     = errors.New("target conversation is required")
	ErrNoFilters    = errors.New("at least one media kind must be enabled")
	ErrInvalidLimit = errors.New("message limit must be at least 1")
	ErrNoRoot       = errors.New("download folder is required")
)
