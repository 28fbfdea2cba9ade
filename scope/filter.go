// api/scope/filter.go
package scope

import (
	"fmt"

	"gorm.io/gorm"

	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
)

// Filters are the caller-supplied tenancy filters a list endpoint accepts.
// They can only narrow the rule's row set; CheckFilters refuses values that
// point outside the caller's own scope before Apply ever sees them.
type Filters struct {
	InstituteID *uint
	ZoneID      *uint
}

// impossible is the fail-closed predicate.
const impossible = "1 = 0"

// Apply rewrites q so it can only return rows the caller is allowed to see,
// then narrows by the extra filters. It never widens: a caller whose scope
// fields are missing gets the impossible predicate, not an unscoped query.
func Apply(q *gorm.DB, res Resource, sc Context, extra Filters) *gorm.DB {
	switch ruleFor(res, sc.Role) {
	case ruleAll:
		// no restriction
	case ruleZone:
		if sc.ZoneID == nil {
			return q.Where(impossible)
		}
		q = q.Where("zone_id = ?", *sc.ZoneID)
	case ruleInstitute:
		if sc.InstituteID == nil {
			return q.Where(impossible)
		}
		q = q.Where("institute_id = ?", *sc.InstituteID)
	case ruleOwnInstituteRow:
		if sc.InstituteID == nil {
			return q.Where(impossible)
		}
		q = q.Where("id = ?", *sc.InstituteID)
	case ruleOwnZoneRow:
		if sc.ZoneID == nil {
			return q.Where(impossible)
		}
		q = q.Where("id = ?", *sc.ZoneID)
	case ruleSelfRow:
		q = q.Where("id = ?", sc.UserID)
	case rulePublic:
		if sc.InstituteID == nil {
			return q.Where(impossible)
		}
		q = q.Where("active = ? AND institute_id = ?", true, *sc.InstituteID)
	default:
		return q.Where(impossible)
	}

	if extra.InstituteID != nil {
		q = q.Where(fmt.Sprintf("%s = ?", res.instituteColumn()), *extra.InstituteID)
	}
	if extra.ZoneID != nil {
		q = q.Where(fmt.Sprintf("%s = ?", res.zoneColumn()), *extra.ZoneID)
	}
	return q
}

// CheckFilters rejects explicit tenancy filters that point outside the
// caller's scope. Without it, Apply would AND the rule on top and return an
// empty page, which reads like "no data" instead of "not yours". Callers
// run it before Apply so the response is a 403 rather than a lie.
func CheckFilters(res Resource, sc Context, extra Filters) error {
	rule := ruleFor(res, sc.Role)
	if rule == ruleAll {
		return nil
	}

	if extra.InstituteID != nil {
		switch rule {
		case ruleInstitute, rulePublic, ruleOwnInstituteRow, ruleSelfRow:
			if sc.InstituteID == nil || *extra.InstituteID != *sc.InstituteID {
				return gurukul_errors.ErrScopeForbidden
			}
		}
	}

	if extra.ZoneID != nil {
		switch rule {
		case ruleZone, ruleOwnZoneRow:
			if sc.ZoneID == nil || *extra.ZoneID != *sc.ZoneID {
				return gurukul_errors.ErrScopeForbidden
			}
		case ruleInstitute, rulePublic, ruleOwnInstituteRow, ruleSelfRow:
			if sc.ZoneID != nil && *extra.ZoneID != *sc.ZoneID {
				return gurukul_errors.ErrScopeForbidden
			}
		}
	}

	return nil
}
