package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
	"github.com/eormeno12/mipichanga-matches-api/internal/platform/logging"
)

type RetentionConfig struct {
	// MaxAge is how long a match is kept after its scheduled date.
	MaxAge time.Duration
	// Interval between sweeps when running in the background.
	Interval   time.Duration
	MaxWorkers int
}

func (c RetentionConfig) Normalize() RetentionConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 30 * 24 * time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 4
	}
	return c
}

type RetentionResult struct {
	ScannedCount int `json:"scanned_count"`
	ExpiredCount int `json:"expired_count"`
	DeletedCount int `json:"deleted_count"`
	FailedCount  int `json:"failed_count"`
	WorkerCount  int `json:"worker_count"`
}

// RetentionService deletes matches whose date fell behind the retention
// window. Deletes run concurrently; a single failed delete does not stop
// the sweep, it is counted and retried on the next pass.
type RetentionService struct {
	matchRepo match.Repository
	cfg       RetentionConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewRetentionService(matchRepo match.Repository, cfg RetentionConfig, logger *logging.Logger) *RetentionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RetentionService{
		matchRepo: matchRepo,
		cfg:       cfg.Normalize(),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *RetentionService) Sweep(ctx context.Context) (RetentionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RetentionService.Sweep")
	defer span.End()

	items, err := s.matchRepo.List(ctx)
	if err != nil {
		return RetentionResult{}, fmt.Errorf("list matches for retention sweep: %w", err)
	}

	cutoff := s.now().UTC().Add(-s.cfg.MaxAge)
	expired := make([]string, 0)
	for _, item := range items {
		if item.Date.Before(cutoff) {
			expired = append(expired, item.ID)
		}
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(expired) {
		workerCount = len(expired)
	}

	result := RetentionResult{
		ScannedCount: len(items),
		ExpiredCount: len(expired),
		WorkerCount:  workerCount,
	}
	if len(expired) == 0 {
		return result, nil
	}

	var deletedCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RetentionResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, matchID := range expired {
		matchID := matchID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			count, err := s.matchRepo.DeleteByID(ctx, matchID)
			if err != nil {
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "retention delete failed",
					"match_id", matchID,
					"error", err,
				)
				return
			}
			deletedCount.Add(int32(count))
		}); err != nil {
			workers.Done()
			return RetentionResult{}, fmt.Errorf("submit delete to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.DeletedCount = int(deletedCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "retention sweep finished",
		"scanned", result.ScannedCount,
		"expired", result.ExpiredCount,
		"deleted", result.DeletedCount,
		"failed", result.FailedCount,
	)

	return result, nil
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *RetentionService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "retention sweep failed", "error", err)
			}
		}
	}
}
