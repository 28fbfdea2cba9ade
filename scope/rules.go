// api/scope/rules.go
package scope

// Resource names a scoped table.
type Resource string

const (
	ResourceZones      Resource = "zones"
	ResourceInstitutes Resource = "institutes"
	ResourceUsers      Resource = "users"
	ResourceCourses    Resource = "courses"
	ResourceVideos     Resource = "videos"
)

// Table returns the database table the resource lives in.
func (r Resource) Table() string {
	return string(r)
}

// instituteColumn is the column an institute filter lands on. The institutes
// table IS the institute, so there the column is the primary key.
func (r Resource) instituteColumn() string {
	if r == ResourceInstitutes {
		return "id"
	}
	return "institute_id"
}

func (r Resource) zoneColumn() string {
	if r == ResourceZones {
		return "id"
	}
	return "zone_id"
}

// ruleKind is how a role is allowed to see rows of a resource.
type ruleKind int

const (
	// ruleNone matches no rows. The default for every pair not listed in
	// the table and for unknown roles.
	ruleNone ruleKind = iota
	// ruleAll matches every row.
	ruleAll
	// ruleZone matches rows whose zone_id is the caller's zone.
	ruleZone
	// ruleInstitute matches rows whose institute_id is the caller's institute.
	ruleInstitute
	// ruleOwnInstituteRow matches the single institutes row the caller belongs to.
	ruleOwnInstituteRow
	// ruleOwnZoneRow matches the single zones row the caller belongs to.
	ruleOwnZoneRow
	// ruleSelfRow matches the caller's own users row.
	ruleSelfRow
	// rulePublic matches active rows of the caller's institute.
	rulePublic
)

type pair struct {
	res  Resource
	role Role
}

// ruleTable is the single source of row visibility. Apply and Partition
// both read it; changing an entry changes the list path and the validate
// path together.
var ruleTable = map[pair]ruleKind{
	{ResourceZones, RoleSuperAdmin}:     ruleAll,
	{ResourceZones, RoleZonalAdmin}:     ruleOwnZoneRow,
	{ResourceZones, RoleInstituteAdmin}: ruleOwnZoneRow,

	{ResourceInstitutes, RoleSuperAdmin}:     ruleAll,
	{ResourceInstitutes, RoleZonalAdmin}:     ruleZone,
	{ResourceInstitutes, RoleInstituteAdmin}: ruleOwnInstituteRow,
	{ResourceInstitutes, RoleTeacher}:        ruleOwnInstituteRow,
	{ResourceInstitutes, RoleStudent}:        ruleOwnInstituteRow,
	{ResourceInstitutes, RoleParent}:         ruleOwnInstituteRow,

	{ResourceUsers, RoleSuperAdmin}:     ruleAll,
	{ResourceUsers, RoleZonalAdmin}:     ruleZone,
	{ResourceUsers, RoleInstituteAdmin}: ruleInstitute,
	{ResourceUsers, RoleTeacher}:        ruleSelfRow,
	{ResourceUsers, RoleStudent}:        ruleSelfRow,
	{ResourceUsers, RoleParent}:         ruleSelfRow,

	{ResourceCourses, RoleSuperAdmin}:     ruleAll,
	{ResourceCourses, RoleZonalAdmin}:     ruleZone,
	{ResourceCourses, RoleInstituteAdmin}: ruleInstitute,
	// TODO: narrow teachers to assigned courses once the course_assignments
	// table lands. Until then teachers see the whole institute, on the list
	// path and the validate path alike.
	{ResourceCourses, RoleTeacher}: ruleInstitute,
	{ResourceCourses, RoleStudent}: rulePublic,
	{ResourceCourses, RoleParent}:  rulePublic,

	{ResourceVideos, RoleSuperAdmin}:     ruleAll,
	{ResourceVideos, RoleZonalAdmin}:     ruleZone,
	{ResourceVideos, RoleInstituteAdmin}: ruleInstitute,
	{ResourceVideos, RoleTeacher}:        ruleInstitute, // same placeholder as courses
	{ResourceVideos, RoleStudent}:        rulePublic,
	{ResourceVideos, RoleParent}:         rulePublic,
}

// ruleFor resolves the visibility rule for a (resource, role) pair.
// Anything not in the table fails closed.
func ruleFor(res Resource, role Role) ruleKind {
	if k, ok := ruleTable[pair{res, role}]; ok {
		return k
	}
	return ruleNone
}
