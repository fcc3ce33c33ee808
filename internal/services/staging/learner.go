package staging

import (
	"github.com/folgercn/ai-bookkeeper/internal/models"
)

// learnCategories feeds the remarks of committed items back into the owner's
// category keywords, so the extraction prompt recognizes the same wording next
// time. Runs after the commit transaction; a learning failure never unwinds
// committed ledger rows.
func (s *Service) learnCategories(batch *models.StagingBatch) {
	for i := range batch.Items {
		if batch.Items[i].Status != models.ItemStatusConfirmed {
			continue
		}
		payload, err := batch.Items[i].DecodePayload()
		if err != nil {
			continue
		}
		if payload.Remark == "" || payload.MainCategory == "" {
			continue
		}
		err = s.categories.AppendKeyword(batch.OwnerID, payload.MainCategory, payload.SubCategory, payload.Remark)
		if err != nil {
			s.log.Warn().Err(err).
				Str("owner", batch.OwnerID).
				Str("category", payload.MainCategory).
				Msg("category keyword learning failed")
		}
	}
}
