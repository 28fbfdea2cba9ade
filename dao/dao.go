// api/dao/dao.go

// Package dao is the GORM data-access layer. Every list query goes through
// scope.Apply before it touches a table, so a DAO cannot accidentally run
// an unscoped read. Mutations leave an audit entry behind.
package dao

import "fmt"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// orderClause builds a safe ORDER BY from caller sort params. Columns not
// in the whitelist fall back to created_at, so sort input can never inject.
func orderClause(sortBy, sortOrder string, allowed []string) string {
	column := "created_at"
	for _, a := range allowed {
		if sortBy == a {
			column = sortBy
			break
		}
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

func normalizeLimit(limit int) int {
	if limit < 1 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
