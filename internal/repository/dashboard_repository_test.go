package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRepositoryScheduleRows(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	rows := sqlmock.NewRows([]string{"slot_id", "day", "st_time", "end_time", "branch_name", "user_id", "username", "photo_url"}).
		AddRow(1, "Monday", "09:00", "10:00", "Main", 7, "ana", "/uploads/students/a.png").
		AddRow(1, "Monday", "09:00", "10:00", "Main", 8, "ben", nil).
		AddRow(2, "Tuesday", "14:30", "16:00", nil, nil, nil, nil)
	mock.ExpectQuery("FROM slots s").WillReturnRows(rows)

	result, err := repo.ScheduleRows(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, "Main", *result[0].BranchName)
	assert.Nil(t, result[1].PhotoURL)
	assert.Nil(t, result[2].BranchName)
	assert.Nil(t, result[2].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositoryScheduleRowsBranchFilter(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	mock.ExpectQuery("WHERE s.branch_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "day", "st_time", "end_time", "branch_name", "user_id", "username", "photo_url"}))

	branchID := int64(5)
	result, err := repo.ScheduleRows(context.Background(), &branchID)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
