package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-api/internal/models"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func strPtr(s string) *string { return &s }

func studentRegistration() models.RegistrationParams {
	return models.RegistrationParams{
		User: models.User{
			Name:     strPtr("Ana Lim"),
			Username: strPtr("ana"),
			Email:    strPtr("ana@example.com"),
			Role:     models.RoleStudent,
			Status:   models.StatusActive,
		},
		Details: &models.StudentDetails{
			StudentNo: "S-001",
			PhotoURL:  "/default-avatar.png",
		},
		GradeIDs:  []int64{1, 2},
		SlotIDs:   []int64{10},
		BranchIDs: []int64{5},
	}
}

func TestStudentRepositoryRegisterStudent(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("INSERT INTO student_details").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_grades").
		WithArgs(int64(7), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO user_slots").
		WithArgs(int64(7), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_branches .* ON CONFLICT DO NOTHING").
		WithArgs(int64(7), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID, err := repo.Register(context.Background(), studentRegistration())
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRegisterTeacherSkipsDetails(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	params := studentRegistration()
	params.User.Role = models.RoleTeacher
	params.Details = nil

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	userID, err := repo.Register(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int64(3), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRegisterRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("INSERT INTO student_details").
		WillReturnError(errors.New("constraint violated"))
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), studentRegistration())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateProfileReplacesAssignments(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_details SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM user_grades WHERE user_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO user_grades").
		WithArgs(int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM user_slots WHERE user_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_slots").
		WithArgs(int64(7), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateProfile(context.Background(), models.ProfileUpdateParams{
		UserID:           7,
		User:             models.UserPatch{Name: strPtr("Renamed")},
		EffectiveRole:    models.RoleStudent,
		EffectiveStatus:  models.StatusActive,
		Details:          models.StudentDetailsPatch{StudentNo: strPtr("S-002")},
		AsStudent:        true,
		PriorRoleStudent: true,
		GradeIDs:         []int64{3},
		SlotIDs:          []int64{11},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateProfileMissingProfile(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_details SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateProfile(context.Background(), models.ProfileUpdateParams{
		UserID:           7,
		EffectiveRole:    models.RoleStudent,
		EffectiveStatus:  models.StatusActive,
		AsStudent:        true,
		PriorRoleStudent: true,
	})
	require.ErrorIs(t, err, ErrProfileMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateProfilePromotionCreatesDetails(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_details SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO student_details").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.UpdateProfile(context.Background(), models.ProfileUpdateParams{
		UserID:           7,
		EffectiveRole:    models.RoleStudent,
		EffectiveStatus:  models.StatusActive,
		Details:          models.StudentDetailsPatch{StudentNo: strPtr("S-009")},
		AsStudent:        true,
		PriorRoleStudent: false,
		DefaultPhotoURL:  "/default-avatar.png",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteStudentCascade(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, photo_url FROM student_details").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "photo_url"}).AddRow(42, "/uploads/students/a.png"))
	mock.ExpectExec("DELETE FROM payments WHERE student_details_id").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM user_grades WHERE user_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM user_slots WHERE user_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM user_branches WHERE user_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM student_details WHERE user_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users WHERE id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	photoURL, err := repo.DeleteStudent(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/students/a.png", photoURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteStudentMissingDetails(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, photo_url FROM student_details").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "photo_url"}))
	mock.ExpectRollback()

	_, err := repo.DeleteStudent(context.Background(), 9)
	require.ErrorIs(t, err, ErrStudentMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteStudentUserRowAuthoritative(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, photo_url FROM student_details").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "photo_url"}).AddRow(42, "/default-avatar.png"))
	mock.ExpectExec("DELETE FROM payments WHERE student_details_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM user_grades WHERE user_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM user_slots WHERE user_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM user_branches WHERE user_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM student_details WHERE user_id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users WHERE id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.DeleteStudent(context.Background(), 7)
	require.ErrorIs(t, err, ErrUserMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdatePhoto(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE student_details SET photo_url").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePhoto(context.Background(), 7, "/uploads/students/b.png"))

	mock.ExpectExec("UPDATE student_details SET photo_url").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdatePhoto(context.Background(), 8, "/uploads/students/b.png")
	require.ErrorIs(t, err, ErrProfileMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListRoster(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"student_no", "username", "email", "status"}).
		AddRow("S-001", "ana", "ana@example.com", "active").
		AddRow("S-002", nil, nil, "inactive")
	mock.ExpectQuery("SELECT sd.student_no, u.username, u.email, u.status").
		WillReturnRows(rows)

	roster, err := repo.ListRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "S-001", roster[0].StudentNo)
	assert.Nil(t, roster[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
