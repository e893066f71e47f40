package models

import "time"

// OverallStatus is the single rollup label shown on admin dashboards.
type OverallStatus string

const (
	OverallRejected     OverallStatus = "REJECTED"
	OverallAllApproved  OverallStatus = "ALL_APPROVED"
	OverallAllSubmitted OverallStatus = "ALL_SUBMITTED"
	OverallPartial      OverallStatus = "PARTIAL"
	OverallPending      OverallStatus = "PENDING"
)

// DocumentStatusRef is the per-type slot inside a rollup: the document id,
// its current status and an item count for dashboard badges. Absent types
// have a nil slot.
type DocumentStatusRef struct {
	ID     string           `json:"id"`
	Status SubmissionStatus `json:"status"`
	Count  int              `json:"count"`
}

// EducationDocSummary is the rollup across all five document types for one
// education id.
type EducationDocSummary struct {
	EducationID   string             `json:"education_id"`
	Attendance    *DocumentStatusRef `json:"attendance,omitempty"`
	Activity      *DocumentStatusRef `json:"activity,omitempty"`
	Equipment     *DocumentStatusRef `json:"equipment,omitempty"`
	Evidence      *DocumentStatusRef `json:"evidence,omitempty"`
	LessonPlan    *DocumentStatusRef `json:"lesson_plan,omitempty"`
	OverallStatus OverallStatus      `json:"overall_status"`
	LastUpdatedAt *time.Time         `json:"last_updated_at,omitempty"`
}

// EducationSubmissionGroup is the narrower rollup over the three core types
// used by the bulk admin workflow.
type EducationSubmissionGroup struct {
	EducationID   string             `json:"education_id"`
	Attendance    *DocumentStatusRef `json:"attendance,omitempty"`
	Activity      *DocumentStatusRef `json:"activity,omitempty"`
	Equipment     *DocumentStatusRef `json:"equipment,omitempty"`
	OverallStatus OverallStatus      `json:"overall_status"`
}

// RollupStatus reduces a set of present document statuses to the overall
// label. Precedence: any REJECTED wins, then ALL_APPROVED, ALL_SUBMITTED,
// PARTIAL (at least one SUBMITTED), and PENDING otherwise. Absent documents
// never contribute.
func RollupStatus(statuses []SubmissionStatus) OverallStatus {
	if len(statuses) == 0 {
		return OverallPending
	}
	allApproved := true
	allSubmitted := true
	anySubmitted := false
	for _, status := range statuses {
		if status == SubmissionRejected {
			return OverallRejected
		}
		if status != SubmissionApproved {
			allApproved = false
		}
		if status != SubmissionSubmitted {
			allSubmitted = false
		} else {
			anySubmitted = true
		}
	}
	switch {
	case allApproved:
		return OverallAllApproved
	case allSubmitted:
		return OverallAllSubmitted
	case anySubmitted:
		return OverallPartial
	default:
		return OverallPending
	}
}

// WorkflowStatus maps an attendance sheet status onto the shared
// SubmissionStatus vocabulary used by rollups: mid-flow instructor custody
// states count as SUBMITTED-in-progress only once the sheet reaches the
// admin queue.
func (s AttendanceSheetStatus) WorkflowStatus() SubmissionStatus {
	switch s {
	case AttendanceApproved:
		return SubmissionApproved
	case AttendanceRejected:
		return SubmissionRejected
	case AttendanceSubmittedToAdmin:
		return SubmissionSubmitted
	default:
		return SubmissionDraft
	}
}
