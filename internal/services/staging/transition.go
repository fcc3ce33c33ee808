package staging

import (
	"github.com/folgercn/ai-bookkeeper/internal/models"
	"github.com/folgercn/ai-bookkeeper/internal/services/duplicate"
)

// Apply runs the mutation sequence against the batch in memory and returns
// the items it changed. It touches no storage, which keeps the state machine
// testable on its own; persistence happens in the caller's transaction.
//
// Resolution rules:
//   - a temp id not present in the batch is skipped, not fatal
//   - confirm/reject on an item already in that terminal status is a no-op
//   - confirm/reject on the opposite terminal status is skipped: the first
//     terminal resolution wins
//   - set_fields applies only to pending items, never changes status, and
//     refreshes the dedup fingerprint from the corrected fields
//   - the "all" sentinel expands over the items that are pending at the
//     moment that mutation is processed
func Apply(batch *models.StagingBatch, mutations []models.Mutation) []*models.StagedItem {
	touched := make(map[int]*models.StagedItem)

	for _, m := range mutations {
		for _, item := range resolveTargets(batch, m) {
			if applyOne(item, m, batch.OwnerID) {
				touched[item.TempID] = item
			}
		}
	}

	changed := make([]*models.StagedItem, 0, len(touched))
	for i := range batch.Items {
		if item, ok := touched[batch.Items[i].TempID]; ok {
			changed = append(changed, item)
		}
	}
	return changed
}

func resolveTargets(batch *models.StagingBatch, m models.Mutation) []*models.StagedItem {
	if m.All {
		var targets []*models.StagedItem
		for i := range batch.Items {
			if batch.Items[i].Status == models.ItemStatusPending {
				targets = append(targets, &batch.Items[i])
			}
		}
		return targets
	}
	item := batch.ItemByTempID(m.TempID)
	if item == nil {
		return nil
	}
	return []*models.StagedItem{item}
}

func applyOne(item *models.StagedItem, m models.Mutation, ownerID string) bool {
	switch m.Op {
	case models.OpConfirm:
		if item.Status != models.ItemStatusPending {
			return false
		}
		item.Status = models.ItemStatusConfirmed
		return true

	case models.OpReject:
		if item.Status != models.ItemStatusPending {
			return false
		}
		item.Status = models.ItemStatusRejected
		return true

	case models.OpSetFields:
		if item.Status != models.ItemStatusPending || len(m.Fields) == 0 {
			return false
		}
		payload, err := item.DecodePayload()
		if err != nil {
			return false
		}
		setFields(&payload, m.Fields)
		// Core fields may have changed, so the stored fingerprint is stale.
		payload.HashID = duplicate.Fingerprint(ownerID, payload)
		if err := item.SetPayload(payload); err != nil {
			return false
		}
		return true
	}
	return false
}

func setFields(p *models.EntryPayload, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "date":
			if s, ok := value.(string); ok {
				p.Date = s
			}
		case "amount":
			if f, ok := value.(float64); ok && f >= 0 {
				p.Amount = f
			}
		case "main_category":
			if s, ok := value.(string); ok && s != "" {
				p.MainCategory = s
			}
		case "sub_category":
			if s, ok := value.(string); ok {
				p.SubCategory = s
			}
		case "payee":
			if s, ok := value.(string); ok {
				p.Payee = s
			}
		case "consumer":
			if s, ok := value.(string); ok {
				p.Consumer = s
			}
		case "remark":
			if s, ok := value.(string); ok {
				p.Remark = s
			}
		}
	}
}
