package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

func (r *Repository) ListSales(_ context.Context, since *time.Time) ([]domain.SalesHistory, error) {
	var out []domain.SalesHistory
	r.read(func(s *state) {
		for _, sale := range s.sales {
			if since != nil && sale.SaleTime.Before(*since) {
				continue
			}
			out = append(out, sale)
		}
	})
	slices.SortStableFunc(out, func(a, b domain.SalesHistory) int {
		return a.SaleTime.Compare(b.SaleTime)
	})
	return out, nil
}

func (r *Repository) CreateSale(ctx context.Context, sale *domain.SalesHistory) error {
	return r.InsertSale(ctx, sale)
}

// joinShelf fills the read-only fields of a product shelf.
func (s *state) joinShelf(ps domain.ProductShelf) domain.ProductShelf {
	if p, ok := s.products[ps.ProductID]; ok {
		ps.ProductName = p.Name
	}
	if sh, ok := s.shelves[ps.ShelfID]; ok {
		ps.ShelfCode = sh.Code
		ps.ShelfCapacity = sh.Capacity
		ps.StoreID = sh.StoreID
	}
	return ps
}

func (r *Repository) ListProductShelves(_ context.Context) ([]domain.ProductShelf, error) {
	var out []domain.ProductShelf
	r.read(func(s *state) {
		for _, ps := range sortedValues(s.productShelves, func(ps domain.ProductShelf) int64 { return ps.ID }) {
			out = append(out, s.joinShelf(ps))
		}
	})
	return out, nil
}

func (r *Repository) GetProductShelf(_ context.Context, productID, shelfID int64) (*domain.ProductShelf, error) {
	var out *domain.ProductShelf
	r.read(func(s *state) {
		for _, ps := range s.productShelves {
			if ps.ProductID == productID && ps.ShelfID == shelfID {
				out = ptr(s.joinShelf(ps))
				return
			}
		}
	})
	return out, nil
}

func (r *Repository) FindProductShelfByProduct(_ context.Context, productID, storeID int64) (*domain.ProductShelf, error) {
	var out *domain.ProductShelf
	r.read(func(s *state) {
		for _, ps := range sortedValues(s.productShelves, func(ps domain.ProductShelf) int64 { return ps.ShelfID }) {
			if ps.ProductID != productID {
				continue
			}
			if storeID == 0 || s.shelves[ps.ShelfID].StoreID == storeID {
				out = ptr(s.joinShelf(ps))
				return
			}
		}
	})
	return out, nil
}

func (r *Repository) IncrementProductShelfStock(_ context.Context, id int64, delta int, restockedAt time.Time) (int, error) {
	var quantity int
	err := r.write(func(s *state) error {
		current, ok := s.productShelves[id]
		if !ok {
			return fmt.Errorf("product shelf: %w", domain.ErrNotFound)
		}
		current.Quantity += delta
		current.LastRestockedAt = &restockedAt
		s.productShelves[id] = current
		quantity = current.Quantity
		return nil
	})
	return quantity, err
}

func (r *Repository) UpdateProductShelfStock(_ context.Context, ps *domain.ProductShelf) error {
	return r.write(func(s *state) error {
		current, ok := s.productShelves[ps.ID]
		if !ok {
			return fmt.Errorf("product shelf: %w", domain.ErrNotFound)
		}
		current.Quantity = ps.Quantity
		current.LastRestockedAt = ps.LastRestockedAt
		s.productShelves[ps.ID] = current
		return nil
	})
}

func (r *Repository) ListAlerts(_ context.Context, status string) ([]domain.ReplenishmentAlert, error) {
	var out []domain.ReplenishmentAlert
	r.read(func(s *state) {
		for _, a := range sortedValues(s.alerts, func(a domain.ReplenishmentAlert) int64 { return a.ID }) {
			if status == "" || a.Status == status {
				out = append(out, a)
			}
		}
	})
	return out, nil
}

func (r *Repository) GetAlert(_ context.Context, id int64) (*domain.ReplenishmentAlert, error) {
	var out *domain.ReplenishmentAlert
	r.read(func(s *state) {
		if a, ok := s.alerts[id]; ok {
			out = &a
		}
	})
	return out, nil
}

func (r *Repository) HasUnresolvedAlert(_ context.Context, productID, shelfID int64) (bool, error) {
	var found bool
	r.read(func(s *state) {
		for _, a := range s.alerts {
			if a.ProductID == productID && a.ShelfID == shelfID && domain.IsUnresolvedAlert(a.Status) {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *Repository) CreateAlert(_ context.Context, alert *domain.ReplenishmentAlert) error {
	return r.write(func(s *state) error {
		if _, ok := s.products[alert.ProductID]; !ok {
			return fmt.Errorf("alert product %d: %w", alert.ProductID, domain.ErrConflict)
		}
		if _, ok := s.shelves[alert.ShelfID]; !ok {
			return fmt.Errorf("alert shelf %d: %w", alert.ShelfID, domain.ErrConflict)
		}
		alert.ID = s.nextID("alerts")
		s.alerts[alert.ID] = *alert
		return nil
	})
}

func (r *Repository) UpdateAlertStatus(_ context.Context, id int64, status string) error {
	return r.write(func(s *state) error {
		a, ok := s.alerts[id]
		if !ok {
			return fmt.Errorf("alert: %w", domain.ErrNotFound)
		}
		a.Status = status
		s.alerts[id] = a
		return nil
	})
}

// DeleteAlert removes the alert and clears references to it, like ON DELETE SET NULL.
func (r *Repository) DeleteAlert(_ context.Context, id int64) error {
	return r.write(func(s *state) error {
		if _, ok := s.alerts[id]; !ok {
			return fmt.Errorf("alert: %w", domain.ErrNotFound)
		}
		delete(s.alerts, id)
		for reqID, req := range s.requests {
			if req.AlertID != nil && *req.AlertID == id {
				req.AlertID = nil
				s.requests[reqID] = req
			}
		}
		for taskID, task := range s.tasks {
			if task.AlertID != nil && *task.AlertID == id {
				task.AlertID = nil
				s.tasks[taskID] = task
			}
		}
		return nil
	})
}

func (r *Repository) CreateStockRequest(_ context.Context, req *domain.StockRequest) error {
	return r.write(func(s *state) error {
		if req.Quantity <= 0 {
			return fmt.Errorf("stock request quantity %d: %w", req.Quantity, domain.ErrInvalidInput)
		}
		if _, ok := s.products[req.ProductID]; !ok {
			return fmt.Errorf("stock request product %d: %w", req.ProductID, domain.ErrConflict)
		}
		req.ID = s.nextID("requests")
		s.requests[req.ID] = *req
		return nil
	})
}

func (r *Repository) GetStockRequest(_ context.Context, id int64) (*domain.StockRequest, error) {
	var out *domain.StockRequest
	r.read(func(s *state) {
		if req, ok := s.requests[id]; ok {
			out = &req
		}
	})
	return out, nil
}

func (r *Repository) ListStockRequests(_ context.Context, status string) ([]domain.StockRequest, error) {
	var out []domain.StockRequest
	r.read(func(s *state) {
		for _, req := range sortedValues(s.requests, func(r domain.StockRequest) int64 { return r.ID }) {
			if status == "" || req.DeliveryStatus == status {
				out = append(out, req)
			}
		}
	})
	return out, nil
}

func (r *Repository) UpdateStockRequest(_ context.Context, req *domain.StockRequest) error {
	return r.write(func(s *state) error {
		current, ok := s.requests[req.ID]
		if !ok {
			return fmt.Errorf("stock request: %w", domain.ErrNotFound)
		}
		current.DeliveryStatus = req.DeliveryStatus
		current.EstimatedTimeOfArrival = req.EstimatedTimeOfArrival
		current.Quantity = req.Quantity
		s.requests[req.ID] = current
		return nil
	})
}

func (r *Repository) CreateDeliveredStockRequest(_ context.Context, d *domain.DeliveredStockRequest) error {
	return r.write(func(s *state) error {
		for _, existing := range s.delivered {
			if existing.StockRequestID == d.StockRequestID {
				return fmt.Errorf("stock request %d already delivered: %w", d.StockRequestID, domain.ErrConflict)
			}
		}
		d.ID = s.nextID("delivered")
		s.delivered[d.ID] = *d
		return nil
	})
}

func (r *Repository) AppendDeliveryStatusLog(_ context.Context, entry *domain.DeliveryStatusLog) error {
	return r.write(func(s *state) error {
		if _, ok := s.requests[entry.StockRequestID]; !ok {
			return fmt.Errorf("delivery log request %d: %w", entry.StockRequestID, domain.ErrConflict)
		}
		entry.ID = s.nextID("logs")
		s.logs = append(s.logs, *entry)
		return nil
	})
}

func (r *Repository) ListDeliveryStatusLogs(_ context.Context, requestID int64) ([]domain.DeliveryStatusLog, error) {
	var out []domain.DeliveryStatusLog
	r.read(func(s *state) {
		for _, entry := range s.logs {
			if entry.StockRequestID == requestID {
				out = append(out, entry)
			}
		}
	})
	slices.SortStableFunc(out, func(a, b domain.DeliveryStatusLog) int {
		if c := a.ChangedAt.Compare(b.ChangedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *Repository) ListStaff(_ context.Context) ([]domain.Staff, error) {
	var out []domain.Staff
	r.read(func(s *state) {
		out = sortedValues(s.staff, func(st domain.Staff) int64 { return st.ID })
	})
	return out, nil
}

func byDeliveredAt(a, b domain.DeliveredStockRequest) int {
	if c := a.DeliveredAt.Compare(b.DeliveredAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (r *Repository) ListUnassignedDeliveries(_ context.Context) ([]domain.DeliveredStockRequest, error) {
	var out []domain.DeliveredStockRequest
	r.read(func(s *state) {
		tasked := make(map[int64]bool, len(s.tasks))
		for _, t := range s.tasks {
			tasked[t.ProductID] = true
		}
		for _, d := range s.delivered {
			if !d.IsProcessed && !tasked[d.ProductID] {
				out = append(out, d)
			}
		}
	})
	slices.SortFunc(out, byDeliveredAt)
	return out, nil
}

func (r *Repository) GetDelivery(_ context.Context, id int64) (*domain.DeliveredStockRequest, error) {
	var out *domain.DeliveredStockRequest
	r.read(func(s *state) {
		if d, ok := s.delivered[id]; ok {
			out = &d
		}
	})
	return out, nil
}

func (r *Repository) OldestUnprocessedDelivery(_ context.Context, productID int64) (*domain.DeliveredStockRequest, error) {
	var candidates []domain.DeliveredStockRequest
	r.read(func(s *state) {
		for _, d := range s.delivered {
			if d.ProductID == productID && !d.IsProcessed {
				candidates = append(candidates, d)
			}
		}
	})
	if len(candidates) == 0 {
		return nil, nil
	}
	slices.SortFunc(candidates, byDeliveredAt)
	return &candidates[0], nil
}

func (r *Repository) MarkDeliveryProcessed(_ context.Context, id int64) error {
	return r.write(func(s *state) error {
		d, ok := s.delivered[id]
		if !ok || d.IsProcessed {
			return domain.ErrNoDeliveredStock
		}
		d.IsProcessed = true
		s.delivered[id] = d
		return nil
	})
}

func (r *Repository) CreateRestockTask(_ context.Context, task *domain.RestockTask) error {
	return r.write(func(s *state) error {
		if _, ok := s.staff[task.AssignedTo]; !ok {
			return fmt.Errorf("restock task staff %d: %w", task.AssignedTo, domain.ErrConflict)
		}
		if task.DeliveredID != nil {
			for _, existing := range s.tasks {
				if existing.DeliveredID != nil && *existing.DeliveredID == *task.DeliveredID {
					return fmt.Errorf("delivered stock %d already has a task: %w", *task.DeliveredID, domain.ErrConflict)
				}
			}
		}
		task.ID = s.nextID("tasks")
		s.tasks[task.ID] = *task
		return nil
	})
}

func (r *Repository) GetRestockTask(_ context.Context, id int64) (*domain.RestockTask, error) {
	var out *domain.RestockTask
	r.read(func(s *state) {
		if t, ok := s.tasks[id]; ok {
			out = &t
		}
	})
	return out, nil
}

func (r *Repository) UpdateRestockTask(_ context.Context, task *domain.RestockTask) error {
	return r.write(func(s *state) error {
		current, ok := s.tasks[task.ID]
		if !ok {
			return fmt.Errorf("restock task: %w", domain.ErrNotFound)
		}
		current.Status = task.Status
		current.CompletedAt = task.CompletedAt
		current.QuantityRestocked = task.QuantityRestocked
		s.tasks[task.ID] = current
		return nil
	})
}

func (r *Repository) ListRestockTasksByStaff(_ context.Context, staffID int64) ([]domain.RestockTask, error) {
	var out []domain.RestockTask
	r.read(func(s *state) {
		for _, t := range s.tasks {
			if t.AssignedTo == staffID {
				out = append(out, t)
			}
		}
	})
	slices.SortFunc(out, func(a, b domain.RestockTask) int {
		if c := a.AssignedAt.Compare(b.AssignedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
