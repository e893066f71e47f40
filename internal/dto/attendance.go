package dto

import (
	"github.com/noah-isme/edu-docflow-api/internal/models"
)

// UpdateAttendanceSheetRequest carries editable sheet content. Nil sections
// are left untouched.
type UpdateAttendanceSheetRequest struct {
	TeacherInfo *models.TeacherInfo `json:"teacherInfo"`
	Students    *models.StudentList `json:"students" validate:"omitempty,dive"`
	Sessions    *models.SessionList `json:"sessions" validate:"omitempty,dive"`
}

// SignatureRequest attaches a signature to a sheet. For TYPED signatures the
// ref is the typed name itself; for IMAGE ones it references an uploaded file.
type SignatureRequest struct {
	Method       string `json:"method" validate:"required,signature_method"`
	SignatureRef string `json:"signatureRef" validate:"required"`
	Comment      string `json:"comment"`
}

// ReturnSheetRequest carries the per-session attendance counts the program
// staff recorded before handing the sheet back for signing.
type ReturnSheetRequest struct {
	Sessions models.SessionList `json:"sessions" validate:"required,min=1,dive"`
}

// ReviewRequest captures the admin decision on a document.
type ReviewRequest struct {
	Action string `json:"action" validate:"required,review_action"`
	Reason string `json:"reason"`
}

// Review actions accepted by single and bulk review endpoints.
const (
	ReviewActionApprove = "APPROVE"
	ReviewActionReject  = "REJECT"
)

// CompletionReportRow is one student's attendance standing.
type CompletionReportRow struct {
	StudentID      string  `json:"studentId"`
	StudentName    string  `json:"studentName"`
	CompletionRate float64 `json:"completionRate"`
	Completed      bool    `json:"completed"`
}

// CompletionReport summarises per-student completion for one sheet.
type CompletionReport struct {
	EducationID  string                `json:"educationId"`
	SessionCount int                   `json:"sessionCount"`
	Threshold    float64               `json:"threshold"`
	Rows         []CompletionReportRow `json:"rows"`
}
