package duplicate

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/models"
	"github.com/folgercn/ai-bookkeeper/internal/repository"

	"github.com/rs/zerolog"
)

// Detector flags candidates that look like already-committed expenses.
// Advisory only: the flag is a warning for the caller to display, it never
// blocks confirmation or commit.
type Detector struct {
	expenses *repository.ExpenseRepository

	// lookbackDays bounds the comparison window. A committed expense older
	// than this never marks a candidate as duplicate.
	lookbackDays int

	log zerolog.Logger
}

func NewDetector(expenses *repository.ExpenseRepository, lookbackDays int, log zerolog.Logger) *Detector {
	return &Detector{expenses: expenses, lookbackDays: lookbackDays, log: log}
}

// Annotate marks each candidate whose date, exact amount, and main category
// all match a committed expense within the lookback window. It also stamps
// the dedup fingerprint each payload carries into the ledger.
func (d *Detector) Annotate(ownerID string, payloads []models.EntryPayload) []models.Candidate {
	since := time.Now().AddDate(0, 0, -d.lookbackDays).Format("2006-01-02")
	recent, err := d.expenses.FindRecent(ownerID, since)
	if err != nil {
		// Annotation must never fail the submission; log and flag nothing.
		d.log.Warn().Err(err).Str("owner", ownerID).Msg("duplicate lookback query failed")
	}

	seen := make(map[string]bool, len(recent))
	for i := range recent {
		seen[matchKey(recent[i].Date, recent[i].Amount, recent[i].MainCategory)] = true
	}

	candidates := make([]models.Candidate, 0, len(payloads))
	for _, p := range payloads {
		p.HashID = Fingerprint(ownerID, p)
		candidates = append(candidates, models.Candidate{
			EntryPayload: p,
			IsDuplicate:  seen[matchKey(p.Date, p.Amount, p.MainCategory)],
		})
	}
	return candidates
}

func matchKey(date string, amount float64, mainCategory string) string {
	return date + "|" + strconv.FormatFloat(amount, 'f', 2, 64) + "|" + mainCategory
}

// Fingerprint derives the dedup hash stored on ledger rows. The owner id is
// part of the input so fingerprints never collide across users.
func Fingerprint(ownerID string, p models.EntryPayload) string {
	raw := fmt.Sprintf("%s|%s|%.2f|%s|%s", ownerID, p.Date, p.Amount, p.Remark, p.Payee)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
