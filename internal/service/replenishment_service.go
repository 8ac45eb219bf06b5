// backend-go/internal/service/replenishment_service.go
package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/shelfstock/backend-go/internal/cache"
	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/replenishment"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// ReplenishmentService runs the depletion scan and turns open alerts into stock requests.
type ReplenishmentService struct {
	repo       repository.ReplenishmentRepository
	clock      clock.Clock
	predictor  *replenishment.Predictor
	windowDays int
	dashCache  cache.DashboardSummaryCache
}

func NewReplenishmentService(
	repo repository.ReplenishmentRepository,
	clk clock.Clock,
	cfg config.ReplenishmentConfig,
	dashCache cache.DashboardSummaryCache,
) *ReplenishmentService {
	if dashCache == nil {
		dashCache = cache.NewNoopDashboardCache()
	}
	return &ReplenishmentService{
		repo:       repo,
		clock:      clk,
		predictor:  replenishment.NewPredictor(cfg.LowStockDays),
		windowDays: cfg.VelocityWindowDays,
		dashCache:  dashCache,
	}
}

// PredictDepletion computes depletion for every stocked pair with sales and raises
// an open alert for each low-stock pair that has no unresolved alert yet.
func (s *ReplenishmentService) PredictDepletion(ctx context.Context) (*domain.PredictionResult, error) {
	now := s.clock.Now()

	sales, err := s.repo.ListSales(ctx, replenishment.WindowStart(now, s.windowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load sales history: %w", err)
	}
	velocity := replenishment.CalculateVelocity(sales, s.clock.Location())

	shelves, err := s.repo.ListProductShelves(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product shelves: %w", err)
	}

	predictions := s.predictor.Predict(shelves, velocity, now)

	var created []domain.ReplenishmentAlert
	err = s.repo.WithTx(ctx, func(tx repository.ReplenishmentRepository) error {
		created = nil
		for _, p := range predictions {
			if !p.IsLowStock {
				continue
			}

			exists, err := tx.HasUnresolvedAlert(ctx, p.ProductID, p.ShelfID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			alert := domain.ReplenishmentAlert{
				ProductID:              p.ProductID,
				ShelfID:                p.ShelfID,
				PredictedDepletionDate: p.ExpectedDepletionDate,
				Urgency:                p.Urgency,
				Status:                 domain.AlertStatusOpen,
				CreatedAt:              now,
			}
			if err := tx.CreateAlert(ctx, &alert); err != nil {
				return err
			}
			created = append(created, alert)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save replenishment alerts: %w", err)
	}

	log.Info().
		Int("sales", len(sales)).
		Int("predictions", len(predictions)).
		Int("alerts_created", len(created)).
		Msg("depletion scan finished")

	if len(created) > 0 {
		invalidateDashboard(ctx, s.dashCache)
	}

	if predictions == nil {
		predictions = []domain.DepletionPrediction{}
	}
	if created == nil {
		created = []domain.ReplenishmentAlert{}
	}
	return &domain.PredictionResult{Predictions: predictions, AlertsCreated: created}, nil
}

// CreateRequestsFromAlerts sizes a stock request for every open alert, most urgent first,
// and acknowledges the alert. The batch is all-or-nothing.
func (s *ReplenishmentService) CreateRequestsFromAlerts(ctx context.Context) ([]domain.StockRequestSummary, error) {
	now := s.clock.Now()

	var summaries []domain.StockRequestSummary
	err := s.repo.WithTx(ctx, func(tx repository.ReplenishmentRepository) error {
		summaries = nil

		alerts, err := tx.ListAlerts(ctx, domain.AlertStatusOpen)
		if err != nil {
			return err
		}
		replenishment.SortAlertsByUrgency(alerts)

		for _, alert := range alerts {
			ps, err := tx.GetProductShelf(ctx, alert.ProductID, alert.ShelfID)
			if err != nil {
				return err
			}
			if ps == nil {
				log.Debug().Int64("alert_id", alert.ID).Msg("no product shelf for alert, skipping")
				continue
			}

			qty := replenishment.OrderQuantity(ps.ShelfCapacity, ps.Quantity)
			if qty <= 0 {
				log.Debug().Int64("alert_id", alert.ID).Int("on_shelf", ps.Quantity).Msg("shelf already full, skipping")
				continue
			}

			alertID := alert.ID
			eta := replenishment.DefaultETA(domain.DeliveryRequested, now)
			req := domain.StockRequest{
				StoreID:                ps.StoreID,
				ProductID:              alert.ProductID,
				Quantity:               qty,
				DeliveryStatus:         domain.DeliveryRequested,
				RequestDate:            now,
				RequestedDeliveryDate:  replenishment.RequestedDeliveryDate(alert.Urgency, now),
				AlertID:                &alertID,
				EstimatedTimeOfArrival: eta,
			}
			if err := tx.CreateStockRequest(ctx, &req); err != nil {
				return err
			}

			entry := domain.DeliveryStatusLog{
				StockRequestID:         req.ID,
				Status:                 req.DeliveryStatus,
				EstimatedTimeOfArrival: eta,
				ChangedAt:              now,
			}
			if err := tx.AppendDeliveryStatusLog(ctx, &entry); err != nil {
				return err
			}

			if err := tx.UpdateAlertStatus(ctx, alert.ID, domain.AlertStatusAcknowledged); err != nil {
				return err
			}

			summaries = append(summaries, domain.StockRequestSummary{
				RequestID:              req.ID,
				AlertID:                alert.ID,
				ProductID:              req.ProductID,
				StoreID:                req.StoreID,
				Quantity:               req.Quantity,
				Urgency:                alert.Urgency,
				RequestedDeliveryDate:  req.RequestedDeliveryDate,
				EstimatedTimeOfArrival: *eta,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stock requests: %w", err)
	}

	log.Info().Int("requests_created", len(summaries)).Msg("stock requests created from alerts")

	if len(summaries) > 0 {
		invalidateDashboard(ctx, s.dashCache)
	}
	if summaries == nil {
		summaries = []domain.StockRequestSummary{}
	}
	return summaries, nil
}

// ListAlerts returns alerts, optionally narrowed to one status.
func (s *ReplenishmentService) ListAlerts(ctx context.Context, status string) ([]domain.ReplenishmentAlert, error) {
	switch status {
	case "", domain.AlertStatusOpen, domain.AlertStatusAcknowledged, domain.AlertStatusResolved:
	default:
		return nil, fmt.Errorf("%w: unknown alert status %q", domain.ErrInvalidInput, status)
	}

	alerts, err := s.repo.ListAlerts(ctx, status)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []domain.ReplenishmentAlert{}
	}
	return alerts, nil
}

func invalidateDashboard(ctx context.Context, c cache.DashboardSummaryCache) {
	if err := c.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}
