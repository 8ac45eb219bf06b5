package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/cache"
	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/replenishment"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	MsgNothingToAssign = "No delivered stock is waiting for a restock task."
	MsgNoStaff         = "No staff available to assign restock tasks."
	MsgOrganizedOnTime = "Product organized on the shelf on time. Task completed."
	MsgOrganizedLate   = "Product organized on the shelf, but the task was delayed."
)

// RestockService hands delivered stock to staff and records the shelving.
type RestockService struct {
	repo      repository.ReplenishmentRepository
	clock     clock.Clock
	strategy  string
	sla       time.Duration
	dashCache cache.DashboardSummaryCache
}

func NewRestockService(
	repo repository.ReplenishmentRepository,
	clk clock.Clock,
	cfg config.ReplenishmentConfig,
	dashCache cache.DashboardSummaryCache,
) *RestockService {
	if dashCache == nil {
		dashCache = cache.NewNoopDashboardCache()
	}
	sla := cfg.TaskSLA
	if sla <= 0 {
		sla = replenishment.DefaultTaskSLA
	}
	return &RestockService{
		repo:      repo,
		clock:     clk,
		strategy:  cfg.AssignmentStrategy,
		sla:       sla,
		dashCache: dashCache,
	}
}

// AssignTasksFromDeliveredStock creates a pending task for each unprocessed delivered item
// whose product has no restock task yet. Shelves are looked up across all stores unless
// the store strategy is configured.
func (s *RestockService) AssignTasksFromDeliveredStock(ctx context.Context) (*domain.AssignmentResult, error) {
	now := s.clock.Now()

	var result domain.AssignmentResult
	err := s.repo.WithTx(ctx, func(tx repository.ReplenishmentRepository) error {
		result = domain.AssignmentResult{Created: []domain.RestockTask{}}

		items, err := tx.ListUnassignedDeliveries(ctx)
		if err != nil {
			return err
		}
		result.Eligible = len(items)
		if len(items) == 0 {
			result.Message = MsgNothingToAssign
			return nil
		}

		staff, err := tx.ListStaff(ctx)
		if err != nil {
			return err
		}
		if len(staff) == 0 {
			result.Message = MsgNoStaff
			return nil
		}
		strategy := replenishment.NewStrategy(s.strategy, staff)
		storeScoped := strings.EqualFold(strings.TrimSpace(s.strategy), replenishment.StrategyStore)

		for _, item := range items {
			var shelfStore int64
			if storeScoped {
				shelfStore = item.StoreID
			}
			ps, err := tx.FindProductShelfByProduct(ctx, item.ProductID, shelfStore)
			if err != nil {
				return err
			}
			if ps == nil {
				result.Skipped++
				continue
			}

			member, ok := strategy.Next(item.StoreID)
			if !ok {
				result.Skipped++
				continue
			}

			var alertID *int64
			if item.AlertID != nil {
				alert, err := tx.GetAlert(ctx, *item.AlertID)
				if err != nil {
					return err
				}
				if alert != nil {
					id := alert.ID
					alertID = &id
				}
			}

			deliveredID := item.ID
			task := domain.RestockTask{
				AlertID:           alertID,
				DeliveredID:       &deliveredID,
				ProductID:         item.ProductID,
				ShelfID:           ps.ShelfID,
				AssignedTo:        member.ID,
				Status:            domain.TaskPending,
				AssignedAt:        now,
				QuantityRestocked: item.Quantity,
			}
			if err := tx.CreateRestockTask(ctx, &task); err != nil {
				return err
			}
			result.Created = append(result.Created, task)
		}

		result.Message = fmt.Sprintf("Assigned %d restock task(s), skipped %d delivered item(s).", len(result.Created), result.Skipped)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign restock tasks: %w", err)
	}

	log.Info().
		Int("eligible", result.Eligible).
		Int("created", len(result.Created)).
		Int("skipped", result.Skipped).
		Msg("restock tasks assigned")

	if len(result.Created) > 0 {
		invalidateDashboard(ctx, s.dashCache)
	}
	return &result, nil
}

// OrganizeDeliveredProduct puts a task's delivered stock on its shelf and closes the task.
func (s *RestockService) OrganizeDeliveredProduct(ctx context.Context, taskID, staffID int64) (*domain.OrganizeResult, error) {
	now := s.clock.Now()

	var result domain.OrganizeResult
	err := s.repo.WithTx(ctx, func(tx repository.ReplenishmentRepository) error {
		task, err := tx.GetRestockTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil || task.AssignedTo != staffID {
			return domain.ErrTaskNotFound
		}

		delivery, err := s.deliveryForTask(ctx, tx, task)
		if err != nil {
			return err
		}
		if delivery == nil {
			return domain.ErrNoDeliveredStock
		}

		ps, err := tx.GetProductShelf(ctx, task.ProductID, task.ShelfID)
		if err != nil {
			return err
		}
		if ps == nil {
			return domain.ErrShelfNotFound
		}

		if err := tx.MarkDeliveryProcessed(ctx, delivery.ID); err != nil {
			return err
		}

		quantity, err := tx.IncrementProductShelfStock(ctx, ps.ID, delivery.Quantity, now)
		if err != nil {
			return err
		}
		if ps.ShelfCapacity > 0 && quantity > ps.ShelfCapacity {
			log.Warn().
				Int64("shelf_id", ps.ShelfID).
				Int("quantity", quantity).
				Int("capacity", ps.ShelfCapacity).
				Msg("shelf quantity exceeds capacity after restock")
		}

		task.CompletedAt = &now
		task.Status = replenishment.ClassifyTask(task.AssignedAt, now, s.sla)
		if err := tx.UpdateRestockTask(ctx, task); err != nil {
			return err
		}

		result = domain.OrganizeResult{
			Message:       MsgOrganizedOnTime,
			Task:          *task,
			ShelfQuantity: quantity,
		}
		if task.Status == domain.TaskDelayed {
			result.Message = MsgOrganizedLate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("task_id", taskID).
		Int64("staff_id", staffID).
		Str("status", result.Task.Status).
		Msg("delivered product organized")

	invalidateDashboard(ctx, s.dashCache)
	return &result, nil
}

// deliveryForTask returns the unprocessed delivery a task restocks. Tasks without a
// delivery reference take the product's oldest unprocessed delivery.
func (s *RestockService) deliveryForTask(ctx context.Context, tx repository.ReplenishmentRepository, task *domain.RestockTask) (*domain.DeliveredStockRequest, error) {
	if task.DeliveredID == nil {
		return tx.OldestUnprocessedDelivery(ctx, task.ProductID)
	}

	delivery, err := tx.GetDelivery(ctx, *task.DeliveredID)
	if err != nil {
		return nil, err
	}
	if delivery == nil || delivery.IsProcessed {
		return nil, nil
	}
	return delivery, nil
}

// CheckStatusByID reclassifies a completed task against the SLA. It returns nil when
// the task does not exist or has not been completed.
func (s *RestockService) CheckStatusByID(ctx context.Context, taskID int64) (*domain.RestockTask, error) {
	task, err := s.repo.GetRestockTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.CompletedAt == nil {
		return nil, nil
	}

	status := replenishment.ClassifyTask(task.AssignedAt, *task.CompletedAt, s.sla)
	if status == task.Status {
		return task, nil
	}

	task.Status = status
	if err := s.repo.UpdateRestockTask(ctx, task); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.dashCache)
	return task, nil
}

func (s *RestockService) ListTasksByStaff(ctx context.Context, staffID int64) ([]domain.RestockTask, error) {
	tasks, err := s.repo.ListRestockTasksByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.RestockTask{}
	}
	return tasks, nil
}
