package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Staged item statuses. Confirmed and rejected are terminal: once an item
// leaves pending it never changes status again.
const (
	ItemStatusPending   = "pending"
	ItemStatusConfirmed = "confirmed"
	ItemStatusRejected  = "rejected"
)

type StagedItem struct {
	ID      uint      `gorm:"primaryKey" json:"-"`
	BatchID uuid.UUID `gorm:"type:uuid;index:idx_staging_items_batch" json:"-"`

	// TempID is assigned sequentially from 1 at batch-open time and never
	// reused within the batch, so a stale instruction referencing a rejected
	// item misses predictably instead of hitting a different one.
	TempID int `gorm:"index:idx_staging_items_batch" json:"temp_id"`

	Status      string         `json:"status"`
	IsDuplicate bool           `json:"is_duplicate"`
	Payload     datatypes.JSON `json:"data"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
}

// DecodePayload unmarshals the stored payload JSON.
func (i *StagedItem) DecodePayload() (EntryPayload, error) {
	var p EntryPayload
	err := json.Unmarshal(i.Payload, &p)
	return p, err
}

// SetPayload marshals and stores the payload JSON.
func (i *StagedItem) SetPayload(p EntryPayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	i.Payload = datatypes.JSON(raw)
	return nil
}
