package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/cache"
	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/replenishment"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// DeliveryService moves stock requests through the warehouse delivery states.
type DeliveryService struct {
	repo           repository.ReplenishmentRepository
	clock          clock.Clock
	retainResolved bool
	dashCache      cache.DashboardSummaryCache
}

func NewDeliveryService(
	repo repository.ReplenishmentRepository,
	clk clock.Clock,
	cfg config.ReplenishmentConfig,
	dashCache cache.DashboardSummaryCache,
) *DeliveryService {
	if dashCache == nil {
		dashCache = cache.NewNoopDashboardCache()
	}
	return &DeliveryService{
		repo:           repo,
		clock:          clk,
		retainResolved: cfg.RetainResolvedAlerts,
		dashCache:      dashCache,
	}
}

func (s *DeliveryService) Dispatch(ctx context.Context, requestID int64, eta *time.Time) (*domain.StockRequest, error) {
	return s.UpdateDeliveryStatus(ctx, requestID, domain.DeliveryInTransit, eta)
}

func (s *DeliveryService) MarkDelivered(ctx context.Context, requestID int64, eta *time.Time) (*domain.StockRequest, error) {
	return s.UpdateDeliveryStatus(ctx, requestID, domain.DeliveryDelivered, eta)
}

func (s *DeliveryService) Cancel(ctx context.Context, requestID int64) (*domain.StockRequest, error) {
	return s.UpdateDeliveryStatus(ctx, requestID, domain.DeliveryCancelled, nil)
}

// UpdateDeliveryStatus applies a status change, records it in the status log and, on
// delivery, archives the request and resolves its acknowledged alert.
func (s *DeliveryService) UpdateDeliveryStatus(ctx context.Context, requestID int64, status string, eta *time.Time) (*domain.StockRequest, error) {
	next, ok := domain.ParseDeliveryStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown delivery status %q", domain.ErrInvalidInput, status)
	}

	now := s.clock.Now()

	var updated *domain.StockRequest
	err := s.repo.WithTx(ctx, func(tx repository.ReplenishmentRepository) error {
		req, err := tx.GetStockRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("stock request %d: %w", requestID, domain.ErrNotFound)
		}
		if !domain.CanTransition(req.DeliveryStatus, next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, req.DeliveryStatus, next)
		}

		req.DeliveryStatus = next
		req.EstimatedTimeOfArrival = replenishment.ResolveETA(next, eta, now)
		if err := tx.UpdateStockRequest(ctx, req); err != nil {
			return err
		}

		entry := domain.DeliveryStatusLog{
			StockRequestID:         req.ID,
			Status:                 next,
			EstimatedTimeOfArrival: req.EstimatedTimeOfArrival,
			ChangedAt:              now,
		}
		if err := tx.AppendDeliveryStatusLog(ctx, &entry); err != nil {
			return err
		}

		if next == domain.DeliveryDelivered {
			if err := s.archiveDelivery(ctx, tx, req, now); err != nil {
				return err
			}
		}

		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("request_id", updated.ID).
		Str("status", updated.DeliveryStatus).
		Msg("delivery status updated")

	invalidateDashboard(ctx, s.dashCache)
	return updated, nil
}

func (s *DeliveryService) archiveDelivery(ctx context.Context, tx repository.ReplenishmentRepository, req *domain.StockRequest, now time.Time) error {
	delivered := domain.DeliveredStockRequest{
		StockRequestID: req.ID,
		AlertID:        req.AlertID,
		ProductID:      req.ProductID,
		StoreID:        req.StoreID,
		Quantity:       req.Quantity,
		DeliveredAt:    now,
	}
	if err := tx.CreateDeliveredStockRequest(ctx, &delivered); err != nil {
		return err
	}

	if req.AlertID == nil {
		return nil
	}

	alert, err := tx.GetAlert(ctx, *req.AlertID)
	if err != nil {
		return err
	}
	if alert == nil || alert.Status != domain.AlertStatusAcknowledged {
		return nil
	}

	if err := tx.UpdateAlertStatus(ctx, alert.ID, domain.AlertStatusResolved); err != nil {
		return err
	}
	if s.retainResolved {
		return nil
	}

	if err := tx.DeleteAlert(ctx, alert.ID); err != nil {
		return err
	}
	req.AlertID = nil
	return nil
}

func (s *DeliveryService) GetRequest(ctx context.Context, requestID int64) (*domain.StockRequest, error) {
	req, err := s.repo.GetStockRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("stock request %d: %w", requestID, domain.ErrNotFound)
	}
	return req, nil
}

func (s *DeliveryService) ListRequests(ctx context.Context, status string) ([]domain.StockRequest, error) {
	if status != "" {
		parsed, ok := domain.ParseDeliveryStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown delivery status %q", domain.ErrInvalidInput, status)
		}
		status = parsed
	}

	reqs, err := s.repo.ListStockRequests(ctx, status)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.StockRequest{}
	}
	return reqs, nil
}

// StatusLog returns the delivery history of a request, oldest first.
func (s *DeliveryService) StatusLog(ctx context.Context, requestID int64) ([]domain.DeliveryStatusLog, error) {
	if _, err := s.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}

	logs, err := s.repo.ListDeliveryStatusLogs(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.DeliveryStatusLog{}
	}
	return logs, nil
}
