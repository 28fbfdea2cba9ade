// api/scope/scope_test.go
package scope_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/scope"
)

func TestMain(m *testing.M) {
	logger.InitLogger(os.TempDir(), "error")
	defer logger.Sync()
	os.Exit(m.Run())
}

func uintPtr(v uint) *uint {
	return &v
}

func TestNewContextCapabilities(t *testing.T) {
	t.Run("SuperAdmin", func(t *testing.T) {
		sc := scope.NewContext(1, scope.RoleSuperAdmin, nil, nil)
		assert.True(t, sc.Capabilities.ManageZones)
		assert.True(t, sc.Capabilities.ManageInstitutes)
		assert.True(t, sc.Capabilities.ManageUsers)
		assert.True(t, sc.Capabilities.ManageContent)
		assert.True(t, sc.Capabilities.ViewStats)
		assert.True(t, sc.Capabilities.AdministerCaches)
		assert.True(t, sc.Capabilities.SeesAllRows)
	})

	t.Run("ZonalAdmin", func(t *testing.T) {
		sc := scope.NewContext(2, scope.RoleZonalAdmin, nil, uintPtr(4))
		assert.False(t, sc.Capabilities.ManageZones)
		assert.True(t, sc.Capabilities.ManageInstitutes)
		assert.True(t, sc.Capabilities.ManageUsers)
		assert.False(t, sc.Capabilities.AdministerCaches)
		assert.False(t, sc.Capabilities.SeesAllRows)
	})

	t.Run("Teacher", func(t *testing.T) {
		sc := scope.NewContext(3, scope.RoleTeacher, uintPtr(7), nil)
		assert.True(t, sc.Capabilities.ManageContent)
		assert.False(t, sc.Capabilities.ManageUsers)
		assert.False(t, sc.Capabilities.ViewStats)
	})

	t.Run("Student", func(t *testing.T) {
		sc := scope.NewContext(4, scope.RoleStudent, uintPtr(7), nil)
		assert.Equal(t, scope.Capabilities{}, sc.Capabilities)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		sc := scope.NewContext(5, scope.Role("superuser"), uintPtr(7), uintPtr(4))
		assert.Equal(t, scope.Capabilities{}, sc.Capabilities, "unknown roles must get no capabilities")
	})
}
