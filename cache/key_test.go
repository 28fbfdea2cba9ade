// api/cache/key_test.go
package cache_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurukul-labs/gurukul/api/cache"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
)

func uintPtr(v uint) *uint {
	return &v
}

func TestKeyDeterministicAcrossMapOrder(t *testing.T) {
	sc := scope.NewContext(7, scope.RoleInstituteAdmin, uintPtr(3), uintPtr(2))

	a := map[string]any{
		"category": "math",
		"limit":    20,
		"filters":  map[string]any{"active": true, "zone": 4},
	}
	b := map[string]any{
		"filters":  map[string]any{"zone": 4, "active": true},
		"limit":    20,
		"category": "math",
	}

	assert.Equal(t,
		cache.Key("videos:search", a, sc),
		cache.Key("videos:search", b, sc),
		"deep-equal params must derive the same key regardless of construction order")
}

func TestKeyStructParams(t *testing.T) {
	sc := scope.NewContext(7, scope.RoleInstituteAdmin, uintPtr(3), uintPtr(2))

	a := model.VideoSearchCriteria{Category: "math", Limit: 20, InstituteID: uintPtr(3)}
	b := model.VideoSearchCriteria{Category: "math", Limit: 20, InstituteID: uintPtr(3)}
	assert.Equal(t, cache.Key("videos:search", a, sc), cache.Key("videos:search", b, sc))

	c := model.VideoSearchCriteria{Category: "science", Limit: 20, InstituteID: uintPtr(3)}
	assert.NotEqual(t, cache.Key("videos:search", a, sc), cache.Key("videos:search", c, sc))
}

func TestKeyScopeIsolation(t *testing.T) {
	params := map[string]any{"limit": 20}
	base := scope.NewContext(7, scope.RoleInstituteAdmin, uintPtr(3), uintPtr(2))
	baseKey := cache.Key("videos:search", params, base)

	t.Run("DifferentInstitute", func(t *testing.T) {
		other := scope.NewContext(7, scope.RoleInstituteAdmin, uintPtr(4), uintPtr(2))
		assert.NotEqual(t, baseKey, cache.Key("videos:search", params, other))
	})

	t.Run("DifferentRole", func(t *testing.T) {
		other := scope.NewContext(7, scope.RoleTeacher, uintPtr(3), uintPtr(2))
		assert.NotEqual(t, baseKey, cache.Key("videos:search", params, other))
	})

	t.Run("DifferentUser", func(t *testing.T) {
		other := scope.NewContext(8, scope.RoleInstituteAdmin, uintPtr(3), uintPtr(2))
		assert.NotEqual(t, baseKey, cache.Key("videos:search", params, other))
	})

	t.Run("NilVersusSetZone", func(t *testing.T) {
		other := scope.NewContext(7, scope.RoleInstituteAdmin, uintPtr(3), nil)
		assert.NotEqual(t, baseKey, cache.Key("videos:search", params, other))
	})

	t.Run("DifferentOperation", func(t *testing.T) {
		assert.NotEqual(t, baseKey, cache.Key("videos:stats", params, base))
	})
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "videos:", cache.Namespace(scope.ResourceVideos))
	assert.Equal(t, "videos:search", cache.Op(scope.ResourceVideos, "search"))

	sc := scope.NewContext(7, scope.RoleInstituteAdmin, uintPtr(3), uintPtr(2))
	key := cache.Key(cache.Op(scope.ResourceVideos, "search"), map[string]any{"limit": 20}, sc)

	re, err := regexp.Compile(cache.NamespacePattern(scope.ResourceVideos))
	require.NoError(t, err)
	assert.True(t, re.MatchString(key), "a derived key must match its own namespace pattern")

	foreign := cache.Key(cache.Op(scope.ResourceCourses, "search"), map[string]any{"limit": 20}, sc)
	assert.False(t, re.MatchString(foreign), "keys of other resources must not match")
}
