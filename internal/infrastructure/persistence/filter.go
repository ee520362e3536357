package persistence

import (
	"strings"

	"github.com/backoffice/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// paginate applies page/size and ordering from the filter. Callers pass the
// default ordering used when the filter does not name one.
func paginate(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" && isSafeColumn(filter.OrderBy) {
		dir := "ASC"
		if strings.EqualFold(filter.OrderDir, "desc") {
			dir = "DESC"
		}
		return query.Order(filter.OrderBy + " " + dir)
	}
	if defaultOrder != "" {
		return query.Order(defaultOrder)
	}
	return query
}

// isSafeColumn guards the ORDER BY column against SQL injection: only plain
// lowercase identifiers pass.
func isSafeColumn(col string) bool {
	if col == "" {
		return false
	}
	for _, r := range col {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
