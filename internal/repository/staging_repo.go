package repository

import (
	"errors"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/apperr"
	"github.com/folgercn/ai-bookkeeper/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StagingRepository struct {
	db *gorm.DB
}

func NewStagingRepository(db *gorm.DB) *StagingRepository {
	return &StagingRepository{db: db}
}

// Transaction runs fn inside one database transaction.
func (r *StagingRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create persists a new batch together with its items.
func (r *StagingRepository) Create(batch *models.StagingBatch) error {
	return r.db.Create(batch).Error
}

// Get loads a batch with items ordered by temp id. Ownership is part of the
// lookup key; a foreign or unknown batch id both read as not found.
func (r *StagingRepository) Get(batchID uuid.UUID, ownerID string) (*models.StagingBatch, error) {
	var batch models.StagingBatch
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("temp_id ASC")
		}).
		First(&batch, "id = ? AND owner_id = ?", batchID, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// SaveItems writes the given item rows inside tx.
func (r *StagingRepository) SaveItems(tx *gorm.DB, items []*models.StagedItem) error {
	for _, item := range items {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
	}
	return nil
}

// CloseBatch marks a batch closed inside tx.
func (r *StagingRepository) CloseBatch(tx *gorm.DB, batchID uuid.UUID) error {
	return tx.Model(&models.StagingBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]any{"status": models.BatchStatusClosed, "updated_at": time.Now()}).
		Error
}

// StaleOpenBatches lists open batches not touched since the cutoff.
func (r *StagingRepository) StaleOpenBatches(cutoff time.Time) ([]models.StagingBatch, error) {
	var batches []models.StagingBatch
	err := r.db.
		Where("status = ? AND updated_at < ?", models.BatchStatusOpen, cutoff).
		Find(&batches).Error
	return batches, err
}

// Evict removes a batch and its items. Later lookups read as not found.
func (r *StagingRepository) Evict(batchID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.StagedItem{}, "batch_id = ?", batchID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.StagingBatch{}, "id = ?", batchID).Error
	})
}
