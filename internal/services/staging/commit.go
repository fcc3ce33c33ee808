package staging

import (
	"fmt"

	"github.com/folgercn/ai-bookkeeper/internal/models"

	"gorm.io/gorm"
)

// sourceChannel is stamped on every ledger row this engine writes.
const sourceChannel = "staging"

// commit promotes every confirmed item of the batch to a ledger row and
// closes the batch, all inside the caller's transaction. Invoked only when
// no item is pending. Rejected items are discarded; the closed batch rows
// remain as audit history until the janitor evicts them.
func (s *Service) commit(tx *gorm.DB, batch *models.StagingBatch) (int, error) {
	var records []models.Expense
	for i := range batch.Items {
		if batch.Items[i].Status != models.ItemStatusConfirmed {
			continue
		}
		payload, err := batch.Items[i].DecodePayload()
		if err != nil {
			return 0, fmt.Errorf("decode item %d payload: %w", batch.Items[i].TempID, err)
		}
		records = append(records, models.FromPayload(batch.OwnerID, payload, sourceChannel))
	}

	if _, err := s.expenses.Append(tx, batch.OwnerID, records); err != nil {
		return 0, err
	}
	if err := s.batches.CloseBatch(tx, batch.ID); err != nil {
		return 0, err
	}
	return len(records), nil
}
