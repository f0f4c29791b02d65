package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/academyhq/academy-api/internal/models"
)

type stubScheduleRepo struct {
	rows     []models.ScheduleRow
	err      error
	branchID *int64
}

func (s *stubScheduleRepo) ScheduleRows(_ context.Context, branchID *int64) ([]models.ScheduleRow, error) {
	s.branchID = branchID
	return s.rows, s.err
}

func TestFormatClock(t *testing.T) {
	cases := map[string]string{
		"09:00": "9:00 AM",
		"14:30": "2:30 PM",
		"00:00": "12:00 AM",
		"12:00": "12:00 PM",
		"23:59": "11:59 PM",
		"":      "",
		"junk":  "junk",
	}
	for input, want := range cases {
		assert.Equal(t, want, formatClock(input), "input %q", input)
	}
}

func TestScheduleGroupsStudentsAndSkipsMissingDetails(t *testing.T) {
	ana := "ana"
	ben := "ben"
	main := "Main"
	photo := "/uploads/students/a.png"
	anaID, benID := int64(7), int64(8)

	repo := &stubScheduleRepo{rows: []models.ScheduleRow{
		{SlotID: 1, Day: "Monday", StTime: "09:00", EndTime: "10:00", BranchName: &main, UserID: &anaID, Username: &ana, PhotoURL: &photo},
		{SlotID: 1, Day: "Monday", StTime: "09:00", EndTime: "10:00", BranchName: &main, UserID: &benID, Username: &ben, PhotoURL: nil},
	}}
	svc := NewDashboardService(repo, nil, 0, zap.NewNop())

	schedule, err := svc.Schedule(context.Background(), nil, "http://panel.test")
	require.NoError(t, err)

	days := schedule["Main"]["9:00 AM-10:00 AM"]
	require.NotNil(t, days)
	students := days["Monday"]
	require.Len(t, students, 1)
	assert.Equal(t, "ana", *students[0].Name)
	assert.Equal(t, "http://panel.test/uploads/students/a.png", students[0].PhotoURL)
}

func TestScheduleKeepsEmptyBranchNode(t *testing.T) {
	east := "East"
	repo := &stubScheduleRepo{rows: []models.ScheduleRow{
		{SlotID: 2, Day: "Tuesday", StTime: "14:30", EndTime: "16:00", BranchName: &east},
	}}
	svc := NewDashboardService(repo, nil, 0, zap.NewNop())

	schedule, err := svc.Schedule(context.Background(), nil, "http://panel.test")
	require.NoError(t, err)

	// The empty day and time range are pruned but the branch stays.
	branch, ok := schedule["East"]
	require.True(t, ok)
	assert.Empty(t, branch)
}

func TestScheduleUnknownBranchLabel(t *testing.T) {
	name := "ana"
	photo := "/default-avatar.png"
	id := int64(7)
	repo := &stubScheduleRepo{rows: []models.ScheduleRow{
		{SlotID: 3, Day: "Friday", StTime: "08:00", EndTime: "09:00", UserID: &id, Username: &name, PhotoURL: &photo},
	}}
	svc := NewDashboardService(repo, nil, 0, zap.NewNop())

	schedule, err := svc.Schedule(context.Background(), nil, "https://panel.test")
	require.NoError(t, err)
	require.Contains(t, schedule, "Unknown")
	assert.Len(t, schedule["Unknown"]["8:00 AM-9:00 AM"]["Friday"], 1)
}

func TestSchedulePassesBranchFilter(t *testing.T) {
	repo := &stubScheduleRepo{}
	svc := NewDashboardService(repo, nil, 0, zap.NewNop())

	branchID := int64(5)
	_, err := svc.Schedule(context.Background(), &branchID, "http://panel.test")
	require.NoError(t, err)
	require.NotNil(t, repo.branchID)
	assert.Equal(t, int64(5), *repo.branchID)
}

func TestScheduleSurfacesQueryError(t *testing.T) {
	repo := &stubScheduleRepo{err: errors.New("boom")}
	svc := NewDashboardService(repo, nil, 0, zap.NewNop())

	_, err := svc.Schedule(context.Background(), nil, "http://panel.test")
	require.Error(t, err)
}
