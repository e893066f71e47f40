package models

import "encoding/json"

// EditScope classifies how much of a document an actor may mutate. It is a
// pure function of the actor role and the document status, with a narrow
// return-phase carve-out for equipment confirmations.
type EditScope string

const (
	EditScopeFull       EditScope = "FULL"
	EditScopeReturnOnly EditScope = "RETURN_ONLY"
	EditScopeNone       EditScope = "NONE"
)

// Editable reports whether any mutation at all is permitted.
func (s EditScope) Editable() bool {
	return s == EditScopeFull || s == EditScopeReturnOnly
}

// AttendanceEditScope returns the edit scope for an attendance sheet.
// Admins always have full access; the school contact may edit only while
// drafting or after a rejection. RETURNED_TO_TEACHER is read-only: the
// instructor-recorded session counts must survive until signing.
func AttendanceEditScope(role UserRole, status AttendanceSheetStatus) EditScope {
	if role == RoleAdmin {
		return EditScopeFull
	}
	switch status {
	case AttendanceTeacherDraft, AttendanceRejected:
		return EditScopeFull
	default:
		return EditScopeNone
	}
}

// SubmissionEditScope returns the edit scope for a simple submission
// document. While an equipment confirmation's rental state is BORROWED the
// school contact keeps access to the return-confirmation sub-fields even
// though the document itself is submitted.
func SubmissionEditScope(role UserRole, doc *SubmissionDocument) EditScope {
	if role == RoleAdmin {
		return EditScopeFull
	}
	if doc == nil {
		return EditScopeNone
	}
	switch doc.Status {
	case SubmissionDraft, SubmissionRejected:
		return EditScopeFull
	}
	if doc.DocType == DocTypeEquipment && role == RoleTeacher {
		var payload EquipmentConfirmationPayload
		if err := json.Unmarshal(doc.Payload, &payload); err == nil && payload.RentalState == RentalBorrowed {
			return EditScopeReturnOnly
		}
	}
	return EditScopeNone
}
