package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

// buildDashboardFilterClause constructs SQL filter clauses for dashboard queries
func buildDashboardFilterClause(filter *domain.DashboardFilter, alias string, startIndex int) (string, []interface{}) {
	if filter == nil || len(filter.StoreIDs) == 0 {
		return "", nil
	}

	var args []interface{}
	idx := startIndex

	placeholders := make([]string, len(filter.StoreIDs))
	for i, id := range filter.StoreIDs {
		placeholders[i] = fmt.Sprintf("$%d", idx)
		args = append(args, id)
		idx++
	}

	return fmt.Sprintf(" AND %sstore_id IN (%s)", normalizeAlias(alias), strings.Join(placeholders, ",")), args
}

func normalizeAlias(alias string) string {
	if alias == "" {
		return ""
	}
	if !strings.HasSuffix(alias, ".") {
		return alias + "."
	}
	return alias
}
