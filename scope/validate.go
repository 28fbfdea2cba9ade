// api/scope/validate.go
package scope

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
)

// Check is the outcome of validating an explicit id set. ValidIDs and
// InvalidIDs together are exactly the input ids, in input order.
type Check struct {
	ValidIDs   []uint
	InvalidIDs []uint
}

func (c Check) AllValid() bool {
	return len(c.InvalidIDs) == 0
}

// PartialError builds the error services hand back when a bulk target set
// was only partly authorized.
func (c Check) PartialError() *gurukul_errors.PartialAuthorizationError {
	return &gurukul_errors.PartialAuthorizationError{
		RequestedCount: len(c.ValidIDs) + len(c.InvalidIDs),
		ValidCount:     len(c.ValidIDs),
		InvalidCount:   len(c.InvalidIDs),
		InvalidIDs:     append([]uint(nil), c.InvalidIDs...),
	}
}

// RowRef is the minimal projection Partition needs to classify a row.
type RowRef struct {
	ID          uint
	InstituteID *uint
	ZoneID      *uint
	Active      bool
}

// ValidateIDs classifies explicit target ids against the caller's scope
// using the same rule table the list path uses. Roles that see all rows
// skip the lookup entirely. The lookup reads; it never writes.
func ValidateIDs(ctx context.Context, db *gorm.DB, res Resource, ids []uint, sc Context) (Check, error) {
	if len(ids) == 0 {
		return Check{}, nil
	}
	if sc.Capabilities.SeesAllRows {
		return Check{ValidIDs: append([]uint(nil), ids...)}, nil
	}

	cols := []string{"id", "active"}
	switch res {
	case ResourceZones:
	case ResourceInstitutes:
		cols = append(cols, "zone_id")
	default:
		cols = append(cols, "institute_id", "zone_id")
	}

	var refs []RowRef
	err := db.WithContext(ctx).Table(res.Table()).Select(cols).Where("id IN ?", ids).Find(&refs).Error
	if err != nil {
		return Check{}, fmt.Errorf("failed to load %s refs: %w", res, err)
	}

	return Partition(res, sc, ids, refs), nil
}

// Partition classifies ids given pre-fetched row refs. It is pure: same
// inputs, same answer, no database. Ids with no ref are invalid; existence
// is not separable from authorization here, so a caller cannot probe for
// foreign rows by watching which error comes back.
func Partition(res Resource, sc Context, ids []uint, refs []RowRef) Check {
	byID := make(map[uint]RowRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	var check Check
	rule := ruleFor(res, sc.Role)
	for _, id := range ids {
		ref, ok := byID[id]
		if ok && rowAllowed(rule, sc, id, ref) {
			check.ValidIDs = append(check.ValidIDs, id)
		} else {
			check.InvalidIDs = append(check.InvalidIDs, id)
		}
	}
	return check
}

func rowAllowed(rule ruleKind, sc Context, id uint, ref RowRef) bool {
	switch rule {
	case ruleAll:
		return true
	case ruleZone:
		return sc.ZoneID != nil && ref.ZoneID != nil && *ref.ZoneID == *sc.ZoneID
	case ruleInstitute:
		return sc.InstituteID != nil && ref.InstituteID != nil && *ref.InstituteID == *sc.InstituteID
	case ruleOwnInstituteRow:
		return sc.InstituteID != nil && id == *sc.InstituteID
	case ruleOwnZoneRow:
		return sc.ZoneID != nil && id == *sc.ZoneID
	case ruleSelfRow:
		return id == sc.UserID
	case rulePublic:
		return ref.Active && sc.InstituteID != nil && ref.InstituteID != nil && *ref.InstituteID == *sc.InstituteID
	default:
		return false
	}
}
