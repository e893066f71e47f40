package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-docflow-api/internal/models"
)

const attendanceColumns = `id, education_id, status, teacher_info, students, sessions,
       teacher_signature, instructor_signature, admin_review, audit_trail,
       reject_reason, created_at, updated_at`

// AttendanceSheetRepository persists attendance sheets keyed by id with a
// by-education index. At most one sheet exists per education id.
type AttendanceSheetRepository struct {
	db *sqlx.DB
}

// NewAttendanceSheetRepository constructs the repository.
func NewAttendanceSheetRepository(db *sqlx.DB) *AttendanceSheetRepository {
	return &AttendanceSheetRepository{db: db}
}

// GetAll returns every sheet ordered by id.
func (r *AttendanceSheetRepository) GetAll(ctx context.Context) ([]models.AttendanceSheet, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_sheets ORDER BY id`
	var sheets []models.AttendanceSheet
	if err := r.db.SelectContext(ctx, &sheets, query); err != nil {
		return nil, err
	}
	return sheets, nil
}

// GetByID fetches a sheet by identifier.
func (r *AttendanceSheetRepository) GetByID(ctx context.Context, id string) (*models.AttendanceSheet, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_sheets WHERE id = $1`
	var sheet models.AttendanceSheet
	if err := r.db.GetContext(ctx, &sheet, query, id); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// GetByEducationID fetches the sheet belonging to an education id.
func (r *AttendanceSheetRepository) GetByEducationID(ctx context.Context, educationID string) (*models.AttendanceSheet, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_sheets WHERE education_id = $1`
	var sheet models.AttendanceSheet
	if err := r.db.GetContext(ctx, &sheet, query, educationID); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// Upsert inserts or replaces the sheet by id, refreshing updated_at.
func (r *AttendanceSheetRepository) Upsert(ctx context.Context, sheet *models.AttendanceSheet) error {
	now := time.Now().UTC()
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = now
	}
	sheet.UpdatedAt = now
	const query = `INSERT INTO attendance_sheets
	(id, education_id, status, teacher_info, students, sessions, teacher_signature, instructor_signature, admin_review, audit_trail, reject_reason, created_at, updated_at)
	VALUES (:id, :education_id, :status, :teacher_info, :students, :sessions, :teacher_signature, :instructor_signature, :admin_review, :audit_trail, :reject_reason, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
	  status = EXCLUDED.status,
	  teacher_info = EXCLUDED.teacher_info,
	  students = EXCLUDED.students,
	  sessions = EXCLUDED.sessions,
	  teacher_signature = EXCLUDED.teacher_signature,
	  instructor_signature = EXCLUDED.instructor_signature,
	  admin_review = EXCLUDED.admin_review,
	  audit_trail = EXCLUDED.audit_trail,
	  reject_reason = EXCLUDED.reject_reason,
	  updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, sheet); err != nil {
		return err
	}
	return nil
}

// Delete removes a sheet by id.
func (r *AttendanceSheetRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attendance_sheets WHERE id = $1`, id)
	return err
}

// GetOrCreate returns the education's sheet, materializing a default
// TEACHER_DRAFT sheet when none exists yet.
func (r *AttendanceSheetRepository) GetOrCreate(ctx context.Context, educationID string) (*models.AttendanceSheet, error) {
	now := time.Now().UTC()
	seed := models.AttendanceSheet{
		ID:          uuid.NewString(),
		EducationID: educationID,
		Status:      models.AttendanceTeacherDraft,
		Students:    models.StudentList{},
		Sessions:    models.SessionList{},
		AuditTrail:  models.AuditTrail{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	const query = `INSERT INTO attendance_sheets
	(id, education_id, status, teacher_info, students, sessions, teacher_signature, instructor_signature, admin_review, audit_trail, reject_reason, created_at, updated_at)
	VALUES (:id, :education_id, :status, :teacher_info, :students, :sessions, :teacher_signature, :instructor_signature, :admin_review, :audit_trail, :reject_reason, :created_at, :updated_at)
	ON CONFLICT (education_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, &seed); err != nil {
		return nil, err
	}
	return r.GetByEducationID(ctx, educationID)
}
