package models

import (
	"time"

	"github.com/google/uuid"
)

// Batch statuses. A closed batch is immutable and holds no pending items.
const (
	BatchStatusOpen   = "open"
	BatchStatusClosed = "closed"
)

type StagingBatch struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"batch_id"`
	OwnerID   string       `gorm:"index:idx_staging_batches_owner" json:"owner_id"`
	Status    string       `gorm:"index" json:"status"`
	Items     []StagedItem `gorm:"foreignKey:BatchID;references:ID" json:"items"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// PendingCount returns how many items are still awaiting resolution.
func (b *StagingBatch) PendingCount() int {
	n := 0
	for i := range b.Items {
		if b.Items[i].Status == ItemStatusPending {
			n++
		}
	}
	return n
}

// ItemByTempID returns the item with the given batch-scoped temp id, or nil.
func (b *StagingBatch) ItemByTempID(tempID int) *StagedItem {
	for i := range b.Items {
		if b.Items[i].TempID == tempID {
			return &b.Items[i]
		}
	}
	return nil
}
