package models

// MutationOp is the kind of change a correction applies to one staged item.
type MutationOp string

const (
	OpSetFields MutationOp = "set_fields"
	OpConfirm   MutationOp = "confirm"
	OpReject    MutationOp = "reject"
)

// Mutation is one targeted change derived from a free-text instruction.
// Either TempID addresses a single item or All covers every item that is
// still pending when the mutation is processed.
type Mutation struct {
	TempID int        `json:"temp_id,omitempty"`
	All    bool       `json:"all,omitempty"`
	Op     MutationOp `json:"op"`

	// Fields holds the partial payload update for OpSetFields, keyed by the
	// names in PayloadFields.
	Fields map[string]any `json:"fields,omitempty"`
}
