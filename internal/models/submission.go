package models

import (
	"encoding/json"
	"time"
)

// DocumentType enumerates the tracked submission document types.
type DocumentType string

const (
	DocTypeAttendance DocumentType = "ATTENDANCE"
	DocTypeActivity   DocumentType = "ACTIVITY_LOG"
	DocTypeEquipment  DocumentType = "EQUIPMENT_CONFIRMATION"
	DocTypeLessonPlan DocumentType = "LESSON_PLAN"
	DocTypeEvidence   DocumentType = "EVIDENCE_PACKET"
)

// SimpleDocumentTypes are the four types governed by the DRAFT/SUBMITTED
// state machine; the attendance sheet has its own.
var SimpleDocumentTypes = []DocumentType{
	DocTypeActivity, DocTypeEquipment, DocTypeLessonPlan, DocTypeEvidence,
}

// CoreDocumentTypes are the three types covered by the bulk admin workflow.
var CoreDocumentTypes = []DocumentType{
	DocTypeAttendance, DocTypeActivity, DocTypeEquipment,
}

// Valid returns true when the type is a supported value.
func (t DocumentType) Valid() bool {
	switch t {
	case DocTypeAttendance, DocTypeActivity, DocTypeEquipment, DocTypeLessonPlan, DocTypeEvidence:
		return true
	default:
		return false
	}
}

// Simple reports whether the type follows the simple submission lifecycle.
func (t DocumentType) Simple() bool {
	return t.Valid() && t != DocTypeAttendance
}

// SubmissionStatus is the lifecycle of the four simple document types.
type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "DRAFT"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionApproved  SubmissionStatus = "APPROVED"
	SubmissionRejected  SubmissionStatus = "REJECTED"
)

// Valid returns true when the status is a supported value.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionDraft, SubmissionSubmitted, SubmissionApproved, SubmissionRejected:
		return true
	default:
		return false
	}
}

// SubmissionDocument is the common shape of the four simple document types.
// The workflow engine treats Payload as opaque; per-type validation hooks
// interpret it at submit time.
type SubmissionDocument struct {
	ID           string           `db:"id" json:"id"`
	EducationID  string           `db:"education_id" json:"education_id"`
	DocType      DocumentType     `db:"doc_type" json:"doc_type"`
	Status       SubmissionStatus `db:"status" json:"status"`
	Payload      json.RawMessage  `db:"payload" json:"payload"`
	AuditTrail   AuditTrail       `db:"audit_trail" json:"audit_trail"`
	RejectReason *string          `db:"reject_reason" json:"reject_reason,omitempty"`
	SubmittedAt  *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	SubmittedBy  *string          `db:"submitted_by" json:"submitted_by,omitempty"`
	ApprovedAt   *time.Time       `db:"approved_at" json:"approved_at,omitempty"`
	ApprovedBy   *string          `db:"approved_by" json:"approved_by,omitempty"`
	RejectedAt   *time.Time       `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectedBy   *string          `db:"rejected_by" json:"rejected_by,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// ActivityLogPayload is the payload shape for activity log documents.
type ActivityLogPayload struct {
	Entries []ActivityLogEntry `json:"entries"`
}

// ActivityLogEntry is a dated free-form activity record.
type ActivityLogEntry struct {
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
	Photos  []string  `json:"photos,omitempty"`
}

// RentalState tracks the physical custody of borrowed equipment. It lives in
// the payload, not the workflow status: a BORROWED confirmation may already
// be SUBMITTED or APPROVED.
type RentalState string

const (
	RentalBorrowed RentalState = "BORROWED"
	RentalReturned RentalState = "RETURNED"
)

// EquipmentConfirmationPayload is the payload shape for equipment documents.
type EquipmentConfirmationPayload struct {
	Items        []RentalItem `json:"items"`
	BorrowerName string       `json:"borrower_name"`
	BorrowDate   *time.Time   `json:"borrow_date,omitempty"`
	ReturnDate   *time.Time   `json:"return_date,omitempty"`
	RentalState  RentalState  `json:"rental_state,omitempty"`
	// Return-phase confirmation sub-fields, editable by the school contact
	// while the rental state is BORROWED.
	ReturnConfirmedBy string     `json:"return_confirmed_by,omitempty"`
	ReturnConfirmedAt *time.Time `json:"return_confirmed_at,omitempty"`
	ReturnCondition   string     `json:"return_condition,omitempty"`
}

// RentalItem is a single named rental line.
type RentalItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	SerialNo string `json:"serial_no,omitempty"`
}

// LessonPlanPayload is the payload shape for lesson plan documents.
type LessonPlanPayload struct {
	Title    string              `json:"title"`
	Body     string              `json:"body"`
	Sessions []LessonPlanSession `json:"sessions,omitempty"`
}

// LessonPlanSession outlines one planned meeting.
type LessonPlanSession struct {
	Order int    `json:"order"`
	Topic string `json:"topic"`
	Goal  string `json:"goal,omitempty"`
}

// EvidencePacketPayload is the payload shape for evidence packet documents.
type EvidencePacketPayload struct {
	Items []EvidenceItem `json:"items"`
}

// EvidenceItem references one collected piece of evidence.
type EvidenceItem struct {
	Title   string   `json:"title"`
	FileRef string   `json:"file_ref,omitempty"`
	Photos  []string `json:"photos,omitempty"`
	Note    string   `json:"note,omitempty"`
}
