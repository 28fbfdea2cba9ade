// api/errors/common_errors.go
package errors

import "errors"

var (
	ErrInternalServer    = errors.New("internal server error")
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrResourceBusy      = errors.New("resource is locked by another operation")
	ErrCacheNotFound     = errors.New("cache not found")
)
