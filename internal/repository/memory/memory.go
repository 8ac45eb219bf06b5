// Package memory keeps the whole replenishment data set in process. It backs
// DB_DRIVER=memory and the service tests.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
)

type state struct {
	stores         map[int64]domain.Store
	categories     map[int64]domain.Category
	products       map[int64]domain.Product
	shelves        map[int64]domain.Shelf
	staff          map[int64]domain.Staff
	productShelves map[int64]domain.ProductShelf
	sales          []domain.SalesHistory
	alerts         map[int64]domain.ReplenishmentAlert
	requests       map[int64]domain.StockRequest
	delivered      map[int64]domain.DeliveredStockRequest
	logs           []domain.DeliveryStatusLog
	tasks          map[int64]domain.RestockTask
	seq            map[string]int64
}

func newState() *state {
	return &state{
		stores:         make(map[int64]domain.Store),
		categories:     make(map[int64]domain.Category),
		products:       make(map[int64]domain.Product),
		shelves:        make(map[int64]domain.Shelf),
		staff:          make(map[int64]domain.Staff),
		productShelves: make(map[int64]domain.ProductShelf),
		alerts:         make(map[int64]domain.ReplenishmentAlert),
		requests:       make(map[int64]domain.StockRequest),
		delivered:      make(map[int64]domain.DeliveredStockRequest),
		tasks:          make(map[int64]domain.RestockTask),
		seq:            make(map[string]int64),
	}
}

func (s *state) clone() *state {
	return &state{
		stores:         maps.Clone(s.stores),
		categories:     maps.Clone(s.categories),
		products:       maps.Clone(s.products),
		shelves:        maps.Clone(s.shelves),
		staff:          maps.Clone(s.staff),
		productShelves: maps.Clone(s.productShelves),
		sales:          slices.Clone(s.sales),
		alerts:         maps.Clone(s.alerts),
		requests:       maps.Clone(s.requests),
		delivered:      maps.Clone(s.delivered),
		logs:           slices.Clone(s.logs),
		tasks:          maps.Clone(s.tasks),
		seq:            maps.Clone(s.seq),
	}
}

func (s *state) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

type database struct {
	mu    sync.RWMutex
	state *state
}

// Repository implements the replenishment, dashboard and master data repositories.
// Transactions hold the write lock and work on a copy that replaces the live state on commit.
type Repository struct {
	db *database
	tx *state
}

var (
	_ repository.ReplenishmentRepository = (*Repository)(nil)
	_ repository.DashboardRepository     = (*Repository)(nil)
	_ repository.MasterDataRepository    = (*Repository)(nil)
)

func New() *Repository {
	return &Repository{db: &database{state: newState()}}
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo repository.ReplenishmentRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	snapshot := r.db.state.clone()
	if err := fn(&Repository{db: r.db, tx: snapshot}); err != nil {
		return err
	}
	r.db.state = snapshot
	return nil
}

func (r *Repository) read(fn func(s *state)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	fn(r.db.state)
}

func (r *Repository) write(fn func(s *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return fn(r.db.state)
}

// sortedValues returns map values ordered by the given id accessor.
func sortedValues[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int {
		return cmp.Compare(id(a), id(b))
	})
	return out
}

func ptr[T any](v T) *T {
	return &v
}
