package models

import "time"

// DocumentUpdatedEvent is emitted after every successful document mutation
// so dashboards can refresh. The engine is agnostic to the transport.
type DocumentUpdatedEvent struct {
	EducationID  string       `json:"education_id"`
	DocumentType DocumentType `json:"document_type"`
	OccurredAt   time.Time    `json:"occurred_at"`
}
