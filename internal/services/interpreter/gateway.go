package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/apperr"
	"github.com/folgercn/ai-bookkeeper/internal/models"
	"github.com/folgercn/ai-bookkeeper/internal/services/llmclient"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Gateway translates a free-text correction instruction against a batch
// snapshot into per-item mutations. Bulk confirm/reject is recognized locally
// so the common case never depends on engine availability.
type Gateway struct {
	client  llmclient.Client
	timeout time.Duration
	log     zerolog.Logger
}

func NewGateway(client llmclient.Client, timeout time.Duration, log zerolog.Logger) *Gateway {
	return &Gateway{client: client, timeout: timeout, log: log}
}

// action is the JSON shape the instruction engine returns.
type action struct {
	Type          string         `json:"type"`
	Targets       []int          `json:"targets"`
	Modifications map[string]any `json:"modifications"`
}

// Interpret returns the mutations derived from one instruction applied to one
// batch snapshot. An instruction may legitimately resolve to zero mutations.
func (g *Gateway) Interpret(ctx context.Context, batch *models.StagingBatch, instruction string) ([]models.Mutation, error) {
	if muts, ok := fastPath(batch, instruction); ok {
		return muts, nil
	}

	prompt := buildInstructionPrompt(batch)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.client.Generate(ctx, []*genai.Part{
		{Text: prompt},
		{Text: instruction},
	})
	if err != nil {
		g.log.Error().Err(err).Str("batch", batch.ID.String()).Msg("instruction engine call failed")
		return nil, fmt.Errorf("%w: %v", apperr.ErrInterpretationFailed, err)
	}

	var wrapper struct {
		Actions []action `json:"actions"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &wrapper); err != nil {
		g.log.Error().Err(err).Str("batch", batch.ID.String()).Msg("unparseable instruction response")
		return nil, fmt.Errorf("%w: %v", apperr.ErrInterpretationFailed, err)
	}

	return flatten(wrapper.Actions), nil
}

// fastPath handles the deterministic bulk instructions without the engine.
func fastPath(batch *models.StagingBatch, instruction string) ([]models.Mutation, bool) {
	switch normalize(instruction) {
	case "confirm all", "confirm everything", "confirm all items":
		return expandPending(batch, models.OpConfirm), true
	case "reject all", "cancel all", "cancel everything":
		return expandPending(batch, models.OpReject), true
	}
	return nil, false
}

// expandPending yields one mutation per currently-pending item.
func expandPending(batch *models.StagingBatch, op models.MutationOp) []models.Mutation {
	muts := make([]models.Mutation, 0, len(batch.Items))
	for i := range batch.Items {
		if batch.Items[i].Status != models.ItemStatusPending {
			continue
		}
		muts = append(muts, models.Mutation{TempID: batch.Items[i].TempID, Op: op})
	}
	return muts
}

// flatten converts engine actions to per-item mutations, scrubbing field
// names the payload schema does not know. Temp ids that turn out to be absent
// are kept: the batch store resolves those by skipping.
func flatten(actions []action) []models.Mutation {
	var muts []models.Mutation
	for _, a := range actions {
		switch a.Type {
		case "confirm":
			for _, tid := range a.Targets {
				muts = append(muts, models.Mutation{TempID: tid, Op: models.OpConfirm})
			}
		case "delete", "reject":
			for _, tid := range a.Targets {
				muts = append(muts, models.Mutation{TempID: tid, Op: models.OpReject})
			}
		case "modify":
			fields := scrubFields(a.Modifications)
			if len(fields) == 0 {
				continue
			}
			for _, tid := range a.Targets {
				muts = append(muts, models.Mutation{TempID: tid, Op: models.OpSetFields, Fields: fields})
			}
		case "confirm_all":
			muts = append(muts, models.Mutation{All: true, Op: models.OpConfirm})
		case "cancel_all":
			muts = append(muts, models.Mutation{All: true, Op: models.OpReject})
		}
	}
	return muts
}

// scrubFields keeps only known payload fields and well-formed values.
func scrubFields(mods map[string]any) map[string]any {
	fields := make(map[string]any, len(mods))
	for key, value := range mods {
		if !models.PayloadFields[key] {
			continue
		}
		if key == "amount" {
			amount, ok := value.(float64)
			if !ok || amount < 0 {
				continue
			}
		}
		fields[key] = value
	}
	return fields
}

func normalize(instruction string) string {
	s := strings.ToLower(strings.TrimSpace(instruction))
	s = strings.Trim(s, ".!")
	return strings.Join(strings.Fields(s), " ")
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
