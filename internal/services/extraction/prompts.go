package extraction

import (
	"encoding/json"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/models"
)

// buildExtractionPrompt assembles the system prompt for the parsing call.
// The model must return strict JSON so decodeCandidates can stay dumb.
func buildExtractionPrompt(categories []models.Category, now time.Time) string {
	type catOption struct {
		Main     string `json:"main"`
		Sub      string `json:"sub,omitempty"`
		Keywords string `json:"keywords,omitempty"`
	}
	options := make([]catOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, catOption{Main: c.MainName, Sub: c.SubName, Keywords: c.Keywords})
	}
	catJSON, _ := json.Marshal(options)

	return "You are an expense bookkeeping parser. Today is " + now.Format("2006-01-02") + ".\n\n" +
		"Task:\n" +
		"- Parse ALL expense entries described in the user input (text or receipt image).\n" +
		"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
		"- Output an object of the form {\"items\": [...]}.\n\n" +
		"Each item must have these fields:\n" +
		"- \"date\": string, ISO format \"YYYY-MM-DD\" (default to today if absent)\n" +
		"- \"amount\": number, the amount spent, never negative\n" +
		"- \"main_category\": string, one of the user's categories below when possible\n" +
		"- \"sub_category\": string or omitted\n" +
		"- \"payee\": string or omitted, the merchant or counterparty\n" +
		"- \"consumer\": string or omitted, who the expense was for\n" +
		"- \"remark\": string or omitted, a short free-text note\n\n" +
		"User categories:\n" + string(catJSON) + "\n\n" +
		"Rules:\n" +
		"- One input may describe several separate expenses; emit one item each.\n" +
		"- Relative dates (\"yesterday\", \"last Friday\") resolve against today.\n" +
		"- Return ONLY valid raw JSON.\n" +
		"- Do NOT wrap the response in code fences.\n"
}
