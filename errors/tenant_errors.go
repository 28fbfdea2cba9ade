// api/errors/tenant_errors.go
package errors

import "errors"

var (
	ErrZoneNotFound    = errors.New("zone not found")
	ErrZoneConflict    = errors.New("zone conflict")
	ErrInvalidZoneData = errors.New("invalid zone data")

	ErrInstituteNotFound    = errors.New("institute not found")
	ErrInstituteConflict    = errors.New("institute conflict")
	ErrInvalidInstituteData = errors.New("invalid institute data")
)
