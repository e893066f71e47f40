package models

import (
	"database/sql/driver"
	"time"
)

// AttendanceSheetStatus tracks the attendance sheet through its teacher /
// instructor / admin handoffs. It is deliberately distinct from
// SubmissionStatus: the sheet has three mid-flow states no other document
// type shares, even though the terminal values are spelled the same.
type AttendanceSheetStatus string

const (
	AttendanceTeacherDraft          AttendanceSheetStatus = "TEACHER_DRAFT"
	AttendanceTeacherReady          AttendanceSheetStatus = "TEACHER_READY"
	AttendanceInstructorRequested   AttendanceSheetStatus = "INSTRUCTOR_REQUESTED"
	AttendanceReturnedToTeacher     AttendanceSheetStatus = "RETURNED_TO_TEACHER"
	AttendanceFinalSentToInstructor AttendanceSheetStatus = "FINAL_SENT_TO_INSTRUCTOR"
	AttendanceSubmittedToAdmin      AttendanceSheetStatus = "SUBMITTED_TO_ADMIN"
	AttendanceApproved              AttendanceSheetStatus = "APPROVED"
	AttendanceRejected              AttendanceSheetStatus = "REJECTED"
)

// Valid returns true when the status is a supported value.
func (s AttendanceSheetStatus) Valid() bool {
	switch s {
	case AttendanceTeacherDraft, AttendanceTeacherReady, AttendanceInstructorRequested,
		AttendanceReturnedToTeacher, AttendanceFinalSentToInstructor,
		AttendanceSubmittedToAdmin, AttendanceApproved, AttendanceRejected:
		return true
	default:
		return false
	}
}

// TeacherInfo captures the school contact's classroom details.
type TeacherInfo struct {
	Grade          string `json:"grade"`
	ClassName      string `json:"class_name"`
	TeacherName    string `json:"teacher_name"`
	TeacherContact string `json:"teacher_contact,omitempty"`
}

// Value implements driver.Valuer.
func (i TeacherInfo) Value() (driver.Value, error) { return jsonbValue(i) }

// Scan implements sql.Scanner.
func (i *TeacherInfo) Scan(src interface{}) error { return jsonbScan(src, i) }

// Student is a roster entry on an attendance sheet.
type Student struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number,omitempty"`
	Note   string `json:"note,omitempty"`
}

// StudentList is the roster stored as JSONB.
type StudentList []Student

// Value implements driver.Valuer.
func (l StudentList) Value() (driver.Value, error) {
	if l == nil {
		return jsonbValue(StudentList{})
	}
	return jsonbValue([]Student(l))
}

// Scan implements sql.Scanner.
func (l *StudentList) Scan(src interface{}) error { return jsonbScan(src, l) }

// Session is one program meeting with per-student attendance counts keyed
// by student id. A zero (or missing) count means the student did not attend.
type Session struct {
	ID         string         `json:"id"`
	Date       time.Time      `json:"date"`
	Topic      string         `json:"topic,omitempty"`
	Attendance map[string]int `json:"attendance"`
}

// SessionList holds the session records stored as JSONB.
type SessionList []Session

// Value implements driver.Valuer.
func (l SessionList) Value() (driver.Value, error) {
	if l == nil {
		return jsonbValue(SessionList{})
	}
	return jsonbValue([]Session(l))
}

// Scan implements sql.Scanner.
func (l *SessionList) Scan(src interface{}) error { return jsonbScan(src, l) }

// AdminReviewStatus is the outcome of the final admin review.
type AdminReviewStatus string

const (
	AdminReviewApproved AdminReviewStatus = "APPROVED"
	AdminReviewRejected AdminReviewStatus = "REJECTED"
)

// AdminReview records the admin decision on a submitted sheet.
type AdminReview struct {
	Status     AdminReviewStatus `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	ReviewedAt time.Time         `json:"reviewed_at"`
}

// Value implements driver.Valuer.
func (r *AdminReview) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return jsonbValue(*r)
}

// Scan implements sql.Scanner.
func (r *AdminReview) Scan(src interface{}) error { return jsonbScan(src, r) }

// AttendanceSheet is the multi-party attendance document for one education.
type AttendanceSheet struct {
	ID                  string                `db:"id" json:"id"`
	EducationID         string                `db:"education_id" json:"education_id"`
	Status              AttendanceSheetStatus `db:"status" json:"status"`
	TeacherInfo         TeacherInfo           `db:"teacher_info" json:"teacher_info"`
	Students            StudentList           `db:"students" json:"students"`
	Sessions            SessionList           `db:"sessions" json:"sessions"`
	TeacherSignature    *Signature            `db:"teacher_signature" json:"teacher_signature,omitempty"`
	InstructorSignature *Signature            `db:"instructor_signature" json:"instructor_signature,omitempty"`
	AdminReview         *AdminReview          `db:"admin_review" json:"admin_review,omitempty"`
	AuditTrail          AuditTrail            `db:"audit_trail" json:"audit_trail"`
	RejectReason        *string               `db:"reject_reason" json:"reject_reason,omitempty"`
	CreatedAt           time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time             `db:"updated_at" json:"updated_at"`
}

// DefaultCompletionThreshold is the attended-session fraction at which a
// student counts as having completed the program.
const DefaultCompletionThreshold = 0.8

// CompletionRate returns the fraction of sessions in which the student has a
// nonzero attendance count. It is a pure function over the sheet contents and
// independent of workflow state.
func CompletionRate(student Student, sessions []Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	attended := 0
	for _, session := range sessions {
		if session.Attendance[student.ID] > 0 {
			attended++
		}
	}
	return float64(attended) / float64(len(sessions))
}

// IsCompleted reports whether the student's completion rate meets the
// threshold. The boundary is inclusive: exactly the threshold counts.
func IsCompleted(student Student, sessions []Session, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultCompletionThreshold
	}
	return CompletionRate(student, sessions) >= threshold
}
