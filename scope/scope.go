// api/scope/scope.go

// Package scope implements row-level authorization for the multi-tenant data
// model. A Context describes the caller; one shared rule table decides, per
// (resource, role), which rows that caller can touch. The same table backs
// both query rewriting (Apply) and explicit target validation (ValidateIDs),
// so the list path and the validate path cannot drift apart.
package scope

type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleZonalAdmin     Role = "zonal_admin"
	RoleInstituteAdmin Role = "institute_admin"
	RoleTeacher        Role = "teacher"
	RoleStudent        Role = "student"
	RoleParent         Role = "parent"
)

// ValidRole reports whether r belongs to the closed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleSuperAdmin, RoleZonalAdmin, RoleInstituteAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// Capabilities are coarse operation gates derived from the role once at
// context construction. Row visibility is the rule table's job; these only
// answer "may this role attempt the operation at all".
type Capabilities struct {
	ManageZones      bool
	ManageInstitutes bool
	ManageUsers      bool
	ManageContent    bool
	ViewStats        bool
	AdministerCaches bool
	SeesAllRows      bool
}

// Context identifies the caller for the duration of one request. It carries
// no mutable state and is safe to copy.
type Context struct {
	UserID       uint
	Role         Role
	InstituteID  *uint
	ZoneID       *uint
	Capabilities Capabilities
}

// NewContext builds the caller context. Capabilities are computed here and
// nowhere else; downstream code consults sc.Capabilities instead of
// re-deriving behavior from the role string.
func NewContext(userID uint, role Role, instituteID, zoneID *uint) Context {
	return Context{
		UserID:       userID,
		Role:         role,
		InstituteID:  instituteID,
		ZoneID:       zoneID,
		Capabilities: capabilitiesOf(role),
	}
}

func capabilitiesOf(role Role) Capabilities {
	switch role {
	case RoleSuperAdmin:
		return Capabilities{
			ManageZones:      true,
			ManageInstitutes: true,
			ManageUsers:      true,
			ManageContent:    true,
			ViewStats:        true,
			AdministerCaches: true,
			SeesAllRows:      true,
		}
	case RoleZonalAdmin:
		return Capabilities{
			ManageInstitutes: true,
			ManageUsers:      true,
			ManageContent:    true,
			ViewStats:        true,
		}
	case RoleInstituteAdmin:
		return Capabilities{
			ManageUsers:   true,
			ManageContent: true,
			ViewStats:     true,
		}
	case RoleTeacher:
		return Capabilities{
			ManageContent: true,
		}
	case RoleStudent, RoleParent:
		return Capabilities{}
	default:
		// Unknown roles get nothing.
		return Capabilities{}
	}
}
