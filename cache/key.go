// api/cache/key.go
package cache

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/gurukul-labs/gurukul/api/scope"
)

// Key derives the cache key for one read: operation name, canonical JSON of
// the parameters, and the caller's scope segment. encoding/json sorts map
// keys at every nesting level, so deep-equal parameter sets produce the
// same key no matter how they were assembled. The scope segment keeps
// callers with different authorization from ever sharing an entry; without
// it the cache would hand one tenant's rows to another.
func Key(op string, params any, sc scope.Context) string {
	payload, err := json.Marshal(params)
	if err != nil {
		// Unencodable params must never hit. A random segment keeps the
		// key unique so the producer always runs.
		payload = []byte(uuid.NewString())
	}
	return op + "|" + string(payload) + "|" + scopeSegment(sc)
}

func scopeSegment(sc scope.Context) string {
	return fmt.Sprintf("u%d:%s:i%s:z%s",
		sc.UserID, sc.Role, uintPtrSegment(sc.InstituteID), uintPtrSegment(sc.ZoneID))
}

func uintPtrSegment(v *uint) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// Namespace is the prefix every key of a resource starts with, e.g.
// "videos:". Operation names are built from it so keys and invalidation
// patterns cannot drift apart.
func Namespace(res scope.Resource) string {
	return string(res) + ":"
}

// NamespacePattern matches every key in a resource's namespace.
func NamespacePattern(res scope.Resource) string {
	return "^" + regexp.QuoteMeta(Namespace(res))
}

// Op builds a namespaced operation name: Op(ResourceVideos, "search") is
// "videos:search".
func Op(res scope.Resource, verb string) string {
	return Namespace(res) + verb
}
