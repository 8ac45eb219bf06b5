package replenishment

import (
	"sort"
	"strings"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

const (
	StrategyGlobal = "global"
	StrategyStore  = "store"
)

// AssignmentStrategy picks the staff member for each restock task of a run.
// A strategy instance is used for a single assignment run.
type AssignmentStrategy interface {
	// Next returns the staff member for a delivery to storeID, or false when nobody qualifies.
	Next(storeID int64) (domain.Staff, bool)
}

// NewStrategy builds the named strategy over the given staff. Unknown names fall back to global.
func NewStrategy(name string, staff []domain.Staff) AssignmentStrategy {
	if strings.EqualFold(strings.TrimSpace(name), StrategyStore) {
		return NewStoreRoundRobin(staff)
	}
	return NewGlobalRoundRobin(staff)
}

// GlobalRoundRobin cycles through all staff ordered by id, regardless of store.
type GlobalRoundRobin struct {
	staff []domain.Staff
	next  int
}

func NewGlobalRoundRobin(staff []domain.Staff) *GlobalRoundRobin {
	return &GlobalRoundRobin{staff: sortedStaff(staff)}
}

func (g *GlobalRoundRobin) Next(int64) (domain.Staff, bool) {
	if len(g.staff) == 0 {
		return domain.Staff{}, false
	}
	s := g.staff[g.next%len(g.staff)]
	g.next++
	return s, true
}

// StoreRoundRobin cycles through the staff of the delivery's store only.
type StoreRoundRobin struct {
	byStore map[int64][]domain.Staff
	next    map[int64]int
}

func NewStoreRoundRobin(staff []domain.Staff) *StoreRoundRobin {
	byStore := make(map[int64][]domain.Staff)
	for _, s := range sortedStaff(staff) {
		byStore[s.StoreID] = append(byStore[s.StoreID], s)
	}
	return &StoreRoundRobin{byStore: byStore, next: make(map[int64]int)}
}

func (s *StoreRoundRobin) Next(storeID int64) (domain.Staff, bool) {
	pool := s.byStore[storeID]
	if len(pool) == 0 {
		return domain.Staff{}, false
	}
	picked := pool[s.next[storeID]%len(pool)]
	s.next[storeID]++
	return picked, true
}

func sortedStaff(staff []domain.Staff) []domain.Staff {
	out := append([]domain.Staff(nil), staff...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
