// api/scope/filter_test.go
package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
)

// dryRunDB builds a gorm handle that renders SQL without ever touching a
// server: the pgx pool is lazy and the automatic ping is disabled.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db
}

func renderVideoList(t *testing.T, db *gorm.DB, sc scope.Context, extra scope.Filters) *gorm.Statement {
	t.Helper()
	var videos []model.Video
	tx := scope.Apply(db.Model(&model.Video{}), scope.ResourceVideos, sc, extra).Find(&videos)
	require.NoError(t, tx.Error)
	return tx.Statement
}

func TestApply(t *testing.T) {
	db := dryRunDB(t)

	t.Run("SuperAdminUnrestricted", func(t *testing.T) {
		sc := scope.NewContext(1, scope.RoleSuperAdmin, nil, nil)
		stmt := renderVideoList(t, db, sc, scope.Filters{})
		assert.NotContains(t, stmt.SQL.String(), "WHERE")
	})

	t.Run("ZonalAdminScopedToZone", func(t *testing.T) {
		sc := scope.NewContext(2, scope.RoleZonalAdmin, nil, uintPtr(4))
		stmt := renderVideoList(t, db, sc, scope.Filters{})
		assert.Contains(t, stmt.SQL.String(), "zone_id = $")
		assert.Contains(t, stmt.Vars, uint(4))
	})

	t.Run("InstituteAdminScopedToInstitute", func(t *testing.T) {
		sc := scope.NewContext(3, scope.RoleInstituteAdmin, uintPtr(7), uintPtr(4))
		stmt := renderVideoList(t, db, sc, scope.Filters{})
		assert.Contains(t, stmt.SQL.String(), "institute_id = $")
		assert.Contains(t, stmt.Vars, uint(7))
	})

	t.Run("StudentActiveRowsOfOwnInstitute", func(t *testing.T) {
		sc := scope.NewContext(4, scope.RoleStudent, uintPtr(7), nil)
		stmt := renderVideoList(t, db, sc, scope.Filters{})
		assert.Contains(t, stmt.SQL.String(), "active = $")
		assert.Contains(t, stmt.SQL.String(), "institute_id = $")
		assert.Contains(t, stmt.Vars, true)
		assert.Contains(t, stmt.Vars, uint(7))
	})

	t.Run("StudentWithoutInstituteFailsClosed", func(t *testing.T) {
		sc := scope.NewContext(4, scope.RoleStudent, nil, nil)
		stmt := renderVideoList(t, db, sc, scope.Filters{})
		assert.Contains(t, stmt.SQL.String(), "1 = 0")
	})

	t.Run("UnknownRoleFailsClosed", func(t *testing.T) {
		sc := scope.NewContext(5, scope.Role("superuser"), uintPtr(7), uintPtr(4))
		stmt := renderVideoList(t, db, sc, scope.Filters{})
		assert.Contains(t, stmt.SQL.String(), "1 = 0")
	})

	t.Run("TeacherMatchesInstituteAdminOnContent", func(t *testing.T) {
		teacher := scope.NewContext(6, scope.RoleTeacher, uintPtr(7), uintPtr(4))
		admin := scope.NewContext(3, scope.RoleInstituteAdmin, uintPtr(7), uintPtr(4))

		teacherStmt := renderVideoList(t, db, teacher, scope.Filters{})
		adminStmt := renderVideoList(t, db, admin, scope.Filters{})

		assert.Equal(t, adminStmt.SQL.String(), teacherStmt.SQL.String())
		assert.Equal(t, adminStmt.Vars, teacherStmt.Vars)
	})

	t.Run("ExtraFiltersNarrow", func(t *testing.T) {
		sc := scope.NewContext(2, scope.RoleZonalAdmin, nil, uintPtr(4))
		stmt := renderVideoList(t, db, sc, scope.Filters{InstituteID: uintPtr(7)})
		assert.Contains(t, stmt.SQL.String(), "zone_id = $")
		assert.Contains(t, stmt.SQL.String(), "institute_id = $")
		assert.Contains(t, stmt.Vars, uint(4))
		assert.Contains(t, stmt.Vars, uint(7))
	})

	t.Run("SelfRowOnUsers", func(t *testing.T) {
		sc := scope.NewContext(42, scope.RoleStudent, uintPtr(7), nil)
		var users []model.User
		tx := scope.Apply(db.Model(&model.User{}), scope.ResourceUsers, sc, scope.Filters{}).Find(&users)
		require.NoError(t, tx.Error)
		assert.Contains(t, tx.Statement.SQL.String(), "id = $")
		assert.Contains(t, tx.Statement.Vars, uint(42))
	})

	t.Run("ZonalAdminOwnZoneRow", func(t *testing.T) {
		sc := scope.NewContext(2, scope.RoleZonalAdmin, nil, uintPtr(4))
		var zones []model.Zone
		tx := scope.Apply(db.Model(&model.Zone{}), scope.ResourceZones, sc, scope.Filters{}).Find(&zones)
		require.NoError(t, tx.Error)
		assert.Contains(t, tx.Statement.SQL.String(), "id = $")
		assert.Contains(t, tx.Statement.Vars, uint(4))
	})

	t.Run("InstituteFilterOnInstitutesHitsPrimaryKey", func(t *testing.T) {
		sc := scope.NewContext(1, scope.RoleSuperAdmin, nil, nil)
		var institutes []model.Institute
		tx := scope.Apply(db.Model(&model.Institute{}), scope.ResourceInstitutes, sc, scope.Filters{InstituteID: uintPtr(7)}).Find(&institutes)
		require.NoError(t, tx.Error)
		assert.Contains(t, tx.Statement.SQL.String(), "id = $")
		assert.Contains(t, tx.Statement.Vars, uint(7))
	})
}

func TestCheckFilters(t *testing.T) {
	t.Run("StudentForeignInstituteRejected", func(t *testing.T) {
		sc := scope.NewContext(4, scope.RoleStudent, uintPtr(7), nil)
		err := scope.CheckFilters(scope.ResourceVideos, sc, scope.Filters{InstituteID: uintPtr(8)})
		assert.ErrorIs(t, err, gurukul_errors.ErrScopeForbidden)
	})

	t.Run("StudentOwnInstituteAllowed", func(t *testing.T) {
		sc := scope.NewContext(4, scope.RoleStudent, uintPtr(7), nil)
		err := scope.CheckFilters(scope.ResourceVideos, sc, scope.Filters{InstituteID: uintPtr(7)})
		assert.NoError(t, err)
	})

	t.Run("ZonalAdminForeignZoneRejected", func(t *testing.T) {
		sc := scope.NewContext(2, scope.RoleZonalAdmin, nil, uintPtr(4))
		err := scope.CheckFilters(scope.ResourceInstitutes, sc, scope.Filters{ZoneID: uintPtr(5)})
		assert.ErrorIs(t, err, gurukul_errors.ErrScopeForbidden)
	})

	t.Run("ZonalAdminOwnZoneAllowed", func(t *testing.T) {
		sc := scope.NewContext(2, scope.RoleZonalAdmin, nil, uintPtr(4))
		err := scope.CheckFilters(scope.ResourceInstitutes, sc, scope.Filters{ZoneID: uintPtr(4)})
		assert.NoError(t, err)
	})

	t.Run("ZonalAdminInstituteFilterNarrows", func(t *testing.T) {
		// An institute filter under a zone rule only narrows; Apply still
		// pins zone_id, so any institute id is acceptable here.
		sc := scope.NewContext(2, scope.RoleZonalAdmin, nil, uintPtr(4))
		err := scope.CheckFilters(scope.ResourceUsers, sc, scope.Filters{InstituteID: uintPtr(999)})
		assert.NoError(t, err)
	})

	t.Run("InstituteAdminForeignZoneRejected", func(t *testing.T) {
		sc := scope.NewContext(3, scope.RoleInstituteAdmin, uintPtr(7), uintPtr(4))
		err := scope.CheckFilters(scope.ResourceVideos, sc, scope.Filters{ZoneID: uintPtr(5)})
		assert.ErrorIs(t, err, gurukul_errors.ErrScopeForbidden)
	})

	t.Run("SuperAdminAnythingGoes", func(t *testing.T) {
		sc := scope.NewContext(1, scope.RoleSuperAdmin, nil, nil)
		err := scope.CheckFilters(scope.ResourceVideos, sc, scope.Filters{InstituteID: uintPtr(8), ZoneID: uintPtr(5)})
		assert.NoError(t, err)
	})
}
