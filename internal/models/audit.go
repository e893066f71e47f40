package models

import (
	"database/sql/driver"
	"time"
)

// AuditEntry records a single successful workflow transition. Entries are
// append-only; total ordering is by timestamp with insertion order breaking
// ties.
type AuditEntry struct {
	ID        string    `json:"id"`
	ActorRole UserRole  `json:"actor_role"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Timestamp time.Time `json:"timestamp"`
	Comment   *string   `json:"comment,omitempty"`
}

// AuditTrail is the per-document transition history stored as JSONB.
type AuditTrail []AuditEntry

// Value implements driver.Valuer.
func (t AuditTrail) Value() (driver.Value, error) {
	if t == nil {
		return jsonbValue(AuditTrail{})
	}
	return jsonbValue([]AuditEntry(t))
}

// Scan implements sql.Scanner.
func (t *AuditTrail) Scan(src interface{}) error {
	return jsonbScan(src, t)
}

// HTTP-level audit actions recorded by the middleware and auth flows.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionDocumentReview = "DOCUMENT_REVIEW"
	AuditActionBulkReview     = "BULK_REVIEW"
)

// AuditLog represents a request-level audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
