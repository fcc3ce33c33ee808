package interpreter

import (
	"encoding/json"

	"github.com/folgercn/ai-bookkeeper/internal/models"
)

// buildInstructionPrompt embeds the current batch snapshot so the engine can
// resolve references like "the second one" to concrete temp ids.
func buildInstructionPrompt(batch *models.StagingBatch) string {
	type snapshotItem struct {
		TempID int                 `json:"temp_id"`
		Status string              `json:"status"`
		Data   models.EntryPayload `json:"data"`
	}
	items := make([]snapshotItem, 0, len(batch.Items))
	for i := range batch.Items {
		payload, err := batch.Items[i].DecodePayload()
		if err != nil {
			continue
		}
		items = append(items, snapshotItem{
			TempID: batch.Items[i].TempID,
			Status: batch.Items[i].Status,
			Data:   payload,
		})
	}
	itemsJSON, _ := json.MarshalIndent(items, "", "  ")

	return "You are a bookkeeping instruction parser. The user is reviewing a batch of\n" +
		"tentative expense entries and issues a natural-language instruction about them.\n" +
		"Translate the instruction into a structured action sequence.\n\n" +
		"Current batch (batch_id: " + batch.ID.String() + "):\n" + string(itemsJSON) + "\n\n" +
		"Output requirements:\n" +
		"Return STRICT JSON, an object with an `actions` list, for example:\n" +
		"{\n" +
		"  \"actions\": [\n" +
		"    {\"type\": \"confirm\", \"targets\": [1, 2]},\n" +
		"    {\"type\": \"modify\", \"targets\": [3], \"modifications\": {\"amount\": 100.0, \"main_category\": \"Shopping\"}},\n" +
		"    {\"type\": \"delete\", \"targets\": [4]},\n" +
		"    {\"type\": \"cancel_all\"}\n" +
		"  ]\n" +
		"}\n\n" +
		"Notes:\n" +
		"1. \"confirm item 1 and 2\" means type \"confirm\" with targets [1, 2].\n" +
		"2. \"confirm everything\" means type \"confirm\" with every pending temp_id as a target.\n" +
		"3. Modification keys are limited to: date, amount, main_category, sub_category, payee, consumer, remark.\n" +
		"4. If the instruction is ambiguous, produce the most likely reading.\n" +
		"5. Do NOT wrap the response in code fences.\n"
}
