// api/errors/scope_errors.go
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrScopeForbidden = errors.New("request outside caller scope")
	ErrMissingScope   = errors.New("missing scope context")
)

// PartialAuthorizationError reports a bulk operation whose target ids were
// only partly inside the caller's scope.
type PartialAuthorizationError struct {
	RequestedCount int    `json:"requested_count"`
	ValidCount     int    `json:"valid_count"`
	InvalidCount   int    `json:"invalid_count"`
	InvalidIDs     []uint `json:"invalid_ids"`
}

func (e *PartialAuthorizationError) Error() string {
	return fmt.Sprintf("%d of %d target ids are outside caller scope", e.InvalidCount, e.RequestedCount)
}
