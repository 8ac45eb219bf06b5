package service

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Predictor is the part of ReplenishmentService the scanner drives.
type Predictor interface {
	PredictDepletion(ctx context.Context) (*domain.PredictionResult, error)
}

// Scanner runs the depletion scan on a fixed interval. Overlapping ticks are dropped.
type Scanner struct {
	predictor Predictor
	interval  time.Duration
	running   sync.Mutex
}

func NewScanner(predictor Predictor, interval time.Duration) *Scanner {
	return &Scanner{predictor: predictor, interval: interval}
}

// Run blocks until ctx is done. The first scan starts immediately.
func (s *Scanner) Run(ctx context.Context) {
	if s.interval <= 0 {
		log.Info().Msg("depletion scanner disabled")
		return
	}

	log.Info().Dur("interval", s.interval).Msg("depletion scanner started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.ScanOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("depletion scanner stopped")
			return
		case <-ticker.C:
			go s.ScanOnce(ctx)
		}
	}
}

// ScanOnce runs a single scan unless one is already in progress, and reports whether it ran.
func (s *Scanner) ScanOnce(ctx context.Context) bool {
	if !s.running.TryLock() {
		log.Warn().Msg("previous depletion scan still running, skipping tick")
		return false
	}
	defer s.running.Unlock()

	start := time.Now()
	result, err := s.predictor.PredictDepletion(ctx)
	if err != nil {
		log.Error().Err(err).Msg("depletion scan failed")
		return true
	}

	log.Info().
		Int("predictions", len(result.Predictions)).
		Int("alerts_created", len(result.AlertsCreated)).
		Dur("took", time.Since(start)).
		Msg("depletion scan tick")
	return true
}
