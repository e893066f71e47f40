package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-docflow-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attendanceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "education_id", "status", "teacher_info", "students", "sessions",
		"teacher_signature", "instructor_signature", "admin_review", "audit_trail",
		"reject_reason", "created_at", "updated_at",
	})
}

func TestAttendanceSheetRepositoryGetByEducationID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceSheetRepository(db)
	rows := attendanceRows().AddRow(
		"sheet-1", "edu-1", "TEACHER_DRAFT",
		[]byte(`{"grade":"3","class_name":"3-A","teacher_name":"Kim"}`),
		[]byte(`[{"id":"stu-1","name":"Lee","number":1}]`),
		[]byte(`[]`), nil, nil, nil, []byte(`[]`), nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, education_id, status")).
		WithArgs("edu-1").
		WillReturnRows(rows)

	sheet, err := repo.GetByEducationID(context.Background(), "edu-1")
	require.NoError(t, err)
	require.Equal(t, "sheet-1", sheet.ID)
	require.Equal(t, models.AttendanceTeacherDraft, sheet.Status)
	require.Len(t, sheet.Students, 1)
	require.Equal(t, "3-A", sheet.TeacherInfo.ClassName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceSheetRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceSheetRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_sheets")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sheet := &models.AttendanceSheet{
		EducationID: "edu-1",
		Status:      models.AttendanceTeacherReady,
		Students:    models.StudentList{{ID: "stu-1", Name: "Lee"}},
	}
	require.NoError(t, repo.Upsert(context.Background(), sheet))
	require.NotEmpty(t, sheet.ID)
	require.False(t, sheet.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceSheetRepositoryGetOrCreateSeedsDraft(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceSheetRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_sheets")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows := attendanceRows().AddRow(
		"sheet-1", "edu-1", "TEACHER_DRAFT", []byte(`{}`), []byte(`[]`), []byte(`[]`),
		nil, nil, nil, []byte(`[]`), nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, education_id, status")).
		WithArgs("edu-1").
		WillReturnRows(rows)

	sheet, err := repo.GetOrCreate(context.Background(), "edu-1")
	require.NoError(t, err)
	require.Equal(t, models.AttendanceTeacherDraft, sheet.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceSheetRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceSheetRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_sheets")).
		WithArgs("sheet-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "sheet-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
