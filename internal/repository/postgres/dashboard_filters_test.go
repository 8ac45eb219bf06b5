package postgres

import (
	"testing"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildDashboardFilterClause(t *testing.T) {
	tests := []struct {
		name       string
		filter     *domain.DashboardFilter
		alias      string
		start      int
		wantClause string
		wantArgs   []interface{}
	}{
		{name: "nil filter", filter: nil, alias: "s"},
		{name: "no stores", filter: &domain.DashboardFilter{}, alias: "s"},
		{
			name:       "stores with alias",
			filter:     &domain.DashboardFilter{StoreIDs: []int64{3, 7}},
			alias:      "s",
			start:      1,
			wantClause: " AND s.store_id IN ($1,$2)",
			wantArgs:   []interface{}{int64(3), int64(7)},
		},
		{
			name:       "offset placeholders",
			filter:     &domain.DashboardFilter{StoreIDs: []int64{9}},
			alias:      "sr.",
			start:      4,
			wantClause: " AND sr.store_id IN ($4)",
			wantArgs:   []interface{}{int64(9)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := buildDashboardFilterClause(tt.filter, tt.alias, tt.start)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
