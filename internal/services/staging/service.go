package staging

import (
	"fmt"
	"sync"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/apperr"
	"github.com/folgercn/ai-bookkeeper/internal/models"
	"github.com/folgercn/ai-bookkeeper/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Service is the authoritative state machine over open batches. Mutation
// application for one batch id is serialized by a per-batch mutex; different
// batches proceed in parallel.
type Service struct {
	batches    *repository.StagingRepository
	expenses   *repository.ExpenseRepository
	categories *repository.CategoryRepository
	log        zerolog.Logger

	locks sync.Map // batch id -> *sync.Mutex
}

func NewService(
	batches *repository.StagingRepository,
	expenses *repository.ExpenseRepository,
	categories *repository.CategoryRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		batches:    batches,
		expenses:   expenses,
		categories: categories,
		log:        log,
	}
}

// OpenBatch stages the candidates as pending items with sequential temp ids
// starting at 1 in input order. Zero candidates is not an error: the batch is
// created already closed, and the caller handles the nothing-to-confirm case.
func (s *Service) OpenBatch(ownerID string, candidates []models.Candidate) (*models.StagingBatch, error) {
	batch := &models.StagingBatch{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Status:  models.BatchStatusOpen,
	}
	if len(candidates) == 0 {
		batch.Status = models.BatchStatusClosed
	}

	for idx, cand := range candidates {
		item := models.StagedItem{
			BatchID:     batch.ID,
			TempID:      idx + 1,
			Status:      models.ItemStatusPending,
			IsDuplicate: cand.IsDuplicate,
		}
		if err := item.SetPayload(cand.EntryPayload); err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		batch.Items = append(batch.Items, item)
	}

	if err := s.batches.Create(batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	s.log.Info().
		Str("batch", batch.ID.String()).
		Str("owner", ownerID).
		Int("items", len(batch.Items)).
		Msg("batch opened")
	return batch, nil
}

// GetBatch returns a consistent snapshot of the batch.
func (s *Service) GetBatch(batchID uuid.UUID, ownerID string) (*models.StagingBatch, error) {
	return s.batches.Get(batchID, ownerID)
}

// ApplyMutations applies the mutation sequence under the batch's lock,
// persists the result, and commits the batch when no pending items remain.
// Returns the updated batch and how many ledger records the call produced.
func (s *Service) ApplyMutations(batchID uuid.UUID, ownerID string, mutations []models.Mutation) (*models.StagingBatch, int, error) {
	mu := s.lockFor(batchID)
	mu.Lock()
	defer mu.Unlock()

	batch, err := s.batches.Get(batchID, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if batch.Status == models.BatchStatusClosed {
		// Closed batches are immutable; every target is stale by definition.
		return batch, 0, nil
	}

	changed := Apply(batch, mutations)
	pending := batch.PendingCount()

	committed := 0
	err = s.batches.Transaction(func(tx *gorm.DB) error {
		if err := s.batches.SaveItems(tx, changed); err != nil {
			return err
		}
		if pending > 0 {
			if len(changed) > 0 {
				return s.touchBatch(tx, batch)
			}
			return nil
		}
		n, err := s.commit(tx, batch)
		if err != nil {
			return err
		}
		committed = n
		return nil
	})
	if err != nil {
		// Nothing persisted; the caller sees the pre-mutation state and may
		// safely retry the whole instruction.
		s.log.Error().Err(err).Str("batch", batchID.String()).Msg("mutation transaction failed")
		return nil, 0, fmt.Errorf("%w: %v", apperr.ErrCommitFailed, err)
	}

	if pending == 0 {
		batch.Status = models.BatchStatusClosed
		s.learnCategories(batch)
		s.log.Info().
			Str("batch", batchID.String()).
			Int("committed", committed).
			Msg("batch closed")
	}
	return batch, committed, nil
}

func (s *Service) touchBatch(tx *gorm.DB, batch *models.StagingBatch) error {
	return tx.Model(&models.StagingBatch{}).
		Where("id = ?", batch.ID).
		Update("updated_at", time.Now()).
		Error
}

func (s *Service) lockFor(batchID uuid.UUID) *sync.Mutex {
	val, _ := s.locks.LoadOrStore(batchID, &sync.Mutex{})
	return val.(*sync.Mutex)
}
