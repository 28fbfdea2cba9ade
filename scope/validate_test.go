// api/scope/validate_test.go
package scope_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurukul-labs/gurukul/api/scope"
)

// contentRefs is the shared fixture: two institutes in two zones, one
// inactive row, used by every role below.
func contentRefs() []scope.RowRef {
	return []scope.RowRef{
		{ID: 10, InstituteID: uintPtr(7), ZoneID: uintPtr(4), Active: true},
		{ID: 11, InstituteID: uintPtr(7), ZoneID: uintPtr(4), Active: false},
		{ID: 12, InstituteID: uintPtr(8), ZoneID: uintPtr(4), Active: true},
		{ID: 13, InstituteID: uintPtr(9), ZoneID: uintPtr(5), Active: true},
	}
}

func refIDs(refs []scope.RowRef) []uint {
	ids := make([]uint, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

func TestPartition(t *testing.T) {
	t.Run("ExactnessWithDuplicatesAndMissing", func(t *testing.T) {
		sc := scope.NewContext(3, scope.RoleInstituteAdmin, uintPtr(7), uintPtr(4))
		ids := []uint{10, 12, 11, 12, 99}

		check := scope.Partition(scope.ResourceVideos, sc, ids, contentRefs())

		assert.Equal(t, []uint{10, 11}, check.ValidIDs)
		assert.Equal(t, []uint{12, 12, 99}, check.InvalidIDs)
		assert.Equal(t, len(ids), len(check.ValidIDs)+len(check.InvalidIDs),
			"every input id must land in exactly one bucket")
		assert.False(t, check.AllValid())
	})

	t.Run("ZonalAdmin", func(t *testing.T) {
		sc := scope.NewContext(2, scope.RoleZonalAdmin, nil, uintPtr(4))
		check := scope.Partition(scope.ResourceVideos, sc, refIDs(contentRefs()), contentRefs())

		assert.Equal(t, []uint{10, 11, 12}, check.ValidIDs)
		assert.Equal(t, []uint{13}, check.InvalidIDs)
	})

	t.Run("StudentPublicRows", func(t *testing.T) {
		sc := scope.NewContext(4, scope.RoleStudent, uintPtr(7), nil)
		check := scope.Partition(scope.ResourceVideos, sc, refIDs(contentRefs()), contentRefs())

		assert.Equal(t, []uint{10}, check.ValidIDs, "only active rows of the own institute")
		assert.Equal(t, []uint{11, 12, 13}, check.InvalidIDs)
	})

	t.Run("UnknownRoleAllInvalid", func(t *testing.T) {
		sc := scope.NewContext(5, scope.Role("superuser"), uintPtr(7), uintPtr(4))
		check := scope.Partition(scope.ResourceVideos, sc, refIDs(contentRefs()), contentRefs())

		assert.Empty(t, check.ValidIDs)
		assert.Equal(t, refIDs(contentRefs()), check.InvalidIDs)
	})

	t.Run("MissingScopeFieldFailsClosed", func(t *testing.T) {
		sc := scope.NewContext(3, scope.RoleInstituteAdmin, nil, nil)
		check := scope.Partition(scope.ResourceVideos, sc, refIDs(contentRefs()), contentRefs())

		assert.Empty(t, check.ValidIDs)
	})

	t.Run("SelfRowOnUsers", func(t *testing.T) {
		sc := scope.NewContext(42, scope.RoleStudent, uintPtr(7), nil)
		refs := []scope.RowRef{
			{ID: 42, InstituteID: uintPtr(7), Active: true},
			{ID: 43, InstituteID: uintPtr(7), Active: true},
		}
		check := scope.Partition(scope.ResourceUsers, sc, []uint{42, 43}, refs)

		assert.Equal(t, []uint{42}, check.ValidIDs)
		assert.Equal(t, []uint{43}, check.InvalidIDs)
	})

	t.Run("OwnInstituteRow", func(t *testing.T) {
		sc := scope.NewContext(3, scope.RoleInstituteAdmin, uintPtr(7), uintPtr(4))
		refs := []scope.RowRef{
			{ID: 7, ZoneID: uintPtr(4), Active: true},
			{ID: 8, ZoneID: uintPtr(4), Active: true},
		}
		check := scope.Partition(scope.ResourceInstitutes, sc, []uint{7, 8}, refs)

		assert.Equal(t, []uint{7}, check.ValidIDs)
		assert.Equal(t, []uint{8}, check.InvalidIDs)
	})

	t.Run("TeacherAgreesWithInstituteAdmin", func(t *testing.T) {
		// The list path renders identical SQL for both roles; the validate
		// path must classify identically on the same fixtures.
		teacher := scope.NewContext(6, scope.RoleTeacher, uintPtr(7), uintPtr(4))
		admin := scope.NewContext(3, scope.RoleInstituteAdmin, uintPtr(7), uintPtr(4))
		ids := refIDs(contentRefs())

		for _, res := range []scope.Resource{scope.ResourceCourses, scope.ResourceVideos} {
			teacherCheck := scope.Partition(res, teacher, ids, contentRefs())
			adminCheck := scope.Partition(res, admin, ids, contentRefs())
			assert.Equal(t, adminCheck, teacherCheck, "resource %s", res)
		}
	})
}

func TestValidateIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyInput", func(t *testing.T) {
		sc := scope.NewContext(3, scope.RoleInstituteAdmin, uintPtr(7), uintPtr(4))
		check, err := scope.ValidateIDs(ctx, nil, scope.ResourceVideos, nil, sc)
		require.NoError(t, err)
		assert.True(t, check.AllValid())
		assert.Empty(t, check.ValidIDs)
	})

	t.Run("SuperAdminSkipsLookup", func(t *testing.T) {
		// A nil db proves the short circuit: touching it would panic.
		sc := scope.NewContext(1, scope.RoleSuperAdmin, nil, nil)
		check, err := scope.ValidateIDs(ctx, nil, scope.ResourceVideos, []uint{10, 11, 12}, sc)
		require.NoError(t, err)
		assert.Equal(t, []uint{10, 11, 12}, check.ValidIDs)
		assert.True(t, check.AllValid())
	})
}

func TestCheckPartialError(t *testing.T) {
	check := scope.Check{ValidIDs: []uint{10, 11}, InvalidIDs: []uint{12, 99}}
	perr := check.PartialError()

	assert.Equal(t, 4, perr.RequestedCount)
	assert.Equal(t, 2, perr.ValidCount)
	assert.Equal(t, 2, perr.InvalidCount)
	assert.Equal(t, []uint{12, 99}, perr.InvalidIDs)
	assert.Contains(t, perr.Error(), "2 of 4")
}
