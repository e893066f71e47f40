package dto

import "encoding/json"

// UpdateSubmissionRequest replaces the document payload. The engine treats it
// as opaque JSON; per-type validation runs at submit time.
type UpdateSubmissionRequest struct {
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// SubmitSubmissionRequest optionally carries final payload content alongside
// the submit action.
type SubmitSubmissionRequest struct {
	Payload json.RawMessage `json:"payload"`
}

// ConfirmReturnRequest records the return of borrowed equipment.
type ConfirmReturnRequest struct {
	ConfirmedBy string `json:"confirmedBy" validate:"required"`
	Condition   string `json:"condition"`
}
