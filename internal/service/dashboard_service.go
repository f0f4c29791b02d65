package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/academyhq/academy-api/internal/dto"
	"github.com/academyhq/academy-api/internal/models"
)

// ScheduleRepository abstracts the dashboard join query.
type ScheduleRepository interface {
	ScheduleRows(ctx context.Context, branchID *int64) ([]models.ScheduleRow, error)
}

// DashboardService builds the nested weekly schedule view.
type DashboardService struct {
	repo     ScheduleRepository
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService constructs a DashboardService. Cache may be nil.
func NewDashboardService(repo ScheduleRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Schedule aggregates every slot into branch, formatted time range and day
// groups. baseURL (scheme plus host of the incoming request) prefixes each
// photo path into an absolute URL; it is part of the cache key for the same
// reason.
func (s *DashboardService) Schedule(ctx context.Context, branchID *int64, baseURL string) (dto.Schedule, error) {
	key := scheduleCacheKey(branchID, baseURL)
	if s.cache.Enabled() {
		var cached dto.Schedule
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.repo.ScheduleRows(ctx, branchID)
	if err != nil {
		s.logger.Error("dashboard schedule query failed", zap.Error(err))
		return nil, err
	}

	schedule := dto.Schedule{}
	for _, row := range rows {
		branchName := "Unknown"
		if row.BranchName != nil {
			branchName = *row.BranchName
		}
		timeRange := formatClock(row.StTime) + "-" + formatClock(row.EndTime)

		if schedule[branchName] == nil {
			schedule[branchName] = dto.BranchSchedule{}
		}
		if schedule[branchName][timeRange] == nil {
			schedule[branchName][timeRange] = dto.DaySchedule{}
		}
		if schedule[branchName][timeRange][row.Day] == nil {
			schedule[branchName][timeRange][row.Day] = []dto.ScheduleEntry{}
		}

		// Unenrolled slots keep their empty group nodes; students without a
		// details row are skipped.
		if row.UserID == nil || row.PhotoURL == nil {
			continue
		}
		schedule[branchName][timeRange][row.Day] = append(schedule[branchName][timeRange][row.Day], dto.ScheduleEntry{
			Name:     row.Username,
			PhotoURL: baseURL + *row.PhotoURL,
		})
	}

	pruneEmptyGroups(schedule)

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, key, schedule, s.cacheTTL)
	}
	return schedule, nil
}

// pruneEmptyGroups removes day lists that stayed empty and time ranges that
// lost every day. Branch nodes are never removed, even when empty.
func pruneEmptyGroups(schedule dto.Schedule) {
	for _, branch := range schedule {
		for timeRange, days := range branch {
			for day, students := range days {
				if len(students) == 0 {
					delete(days, day)
				}
			}
			if len(days) == 0 {
				delete(branch, timeRange)
			}
		}
	}
}

// formatClock renders a 24-hour "HH:MM" value as "H:MM AM/PM". Malformed
// input passes through unchanged; empty input yields an empty string.
func formatClock(value string) string {
	if value == "" {
		return ""
	}
	parts := strings.SplitN(value, ":", 3)
	if len(parts) < 2 {
		return value
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return value
	}
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, parts[1], period)
}

func scheduleCacheKey(branchID *int64, baseURL string) string {
	branch := "all"
	if branchID != nil {
		branch = strconv.FormatInt(*branchID, 10)
	}
	return fmt.Sprintf("dash:schedule:%s:%s", branch, baseURL)
}
