package models

// EntryPayload is the structured expense data carried by a staged item and,
// once confirmed, copied by value into a permanent Expense row.
type EntryPayload struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Amount       float64 `json:"amount"`
	MainCategory string  `json:"main_category"`
	SubCategory  string  `json:"sub_category,omitempty"`
	Payee        string  `json:"payee,omitempty"`
	Consumer     string  `json:"consumer,omitempty"`
	Remark       string  `json:"remark,omitempty"`

	// HashID is the dedup fingerprint computed by the duplicate detector.
	HashID string `json:"hash_id,omitempty"`
}

// PayloadFields is the set of payload field names a correction may set.
var PayloadFields = map[string]bool{
	"date":          true,
	"amount":        true,
	"main_category": true,
	"sub_category":  true,
	"payee":         true,
	"consumer":      true,
	"remark":        true,
}

// Candidate is an extraction result annotated by the duplicate detector,
// ready to be staged.
type Candidate struct {
	EntryPayload
	IsDuplicate bool `json:"is_duplicate"`
}
