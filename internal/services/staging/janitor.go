package staging

import (
	"context"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/models"

	"github.com/google/uuid"
)

// StartJanitor runs the idle-batch sweep on the given interval until ctx is
// cancelled. An open batch untouched for longer than ttl is evicted; later
// operations against its id read as not found, indistinguishable from an
// unknown id.
func (s *Service) StartJanitor(ctx context.Context, ttl, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepIdle(ttl)
			}
		}
	}()
}

func (s *Service) sweepIdle(ttl time.Duration) {
	stale, err := s.batches.StaleOpenBatches(time.Now().Add(-ttl))
	if err != nil {
		s.log.Warn().Err(err).Msg("janitor sweep query failed")
		return
	}
	for i := range stale {
		s.evict(stale[i].ID, stale[i].OwnerID)
	}
}

func (s *Service) evict(batchID uuid.UUID, ownerID string) {
	mu := s.lockFor(batchID)
	mu.Lock()
	defer mu.Unlock()

	// Re-check under the lock: an instruction may have closed it meanwhile.
	batch, err := s.batches.Get(batchID, ownerID)
	if err != nil || batch.Status != models.BatchStatusOpen {
		return
	}
	if err := s.batches.Evict(batch.ID); err != nil {
		s.log.Warn().Err(err).Str("batch", batch.ID.String()).Msg("janitor eviction failed")
		return
	}
	s.locks.Delete(batch.ID)
	s.log.Info().Str("batch", batch.ID.String()).Msg("idle batch evicted")
}
