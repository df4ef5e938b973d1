package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcs_edu_backend/internal/model"
	"bcs_edu_backend/internal/repository"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{-10, 0},
		{0, 0},
		{99, 0},
		{100, 1},
		{399, 1},
		{400, 2},
		{2500, 5},
		{3000, 5},
		{9999, 9},
		{10000, 10},
	}
	for _, tc := range cases {
		if got := LevelForXP(tc.xp); got != tc.level {
			t.Errorf("LevelForXP(%d): expected %d, got %d", tc.xp, tc.level, got)
		}
	}
}

func day(offset int) time.Time {
	return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestCurrentStreak(t *testing.T) {
	now := day(0).Add(14 * time.Hour)

	// Active today and the two days before.
	if got := CurrentStreak([]time.Time{day(0), day(-1), day(-2)}, now); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}

	// Last activity yesterday still counts.
	if got := CurrentStreak([]time.Time{day(-1), day(-2)}, now); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}

	// A run that ended two days ago is worth zero.
	if got := CurrentStreak([]time.Time{day(-2), day(-3), day(-4)}, now); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}

	// A gap inside the run stops the count.
	if got := CurrentStreak([]time.Time{day(0), day(-2), day(-3)}, now); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}

	if got := CurrentStreak(nil, now); got != 0 {
		t.Errorf("expected 0 for empty history, got %d", got)
	}
}

func TestLongestStreak(t *testing.T) {
	// Two runs: 3 days and 2 days, unordered input with a duplicate day.
	dates := []time.Time{
		day(-10), day(-9), day(-8),
		day(-3), day(-2),
		day(-9), // duplicate
	}
	if got := LongestStreak(dates); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}

	if got := LongestStreak([]time.Time{day(0)}); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}

	if got := LongestStreak(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestApplyReward(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGamificationService(
		repository.NewGamificationRepository(db),
		repository.NewSessionRepository(db),
	)

	first, err := svc.ApplyReward(3, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, first.TotalXP)
	assert.Equal(t, 0, first.Level)
	assert.False(t, first.LeveledUp)

	second, err := svc.ApplyReward(3, 75)
	require.NoError(t, err)
	assert.Equal(t, 125, second.TotalXP)
	assert.Equal(t, 1, second.Level)
	assert.True(t, second.LeveledUp)
}

func TestGetStreaks_RecomputesAndReconciles(t *testing.T) {
	db := setupTestDB(t)
	statsRepo := repository.NewGamificationRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	svc := NewGamificationService(statsRepo, sessionRepo)

	now := time.Now()
	require.NoError(t, sessionRepo.RecordCompletion(9, now))
	require.NoError(t, sessionRepo.RecordCompletion(9, now.AddDate(0, 0, -1)))
	require.NoError(t, sessionRepo.RecordView(9, now))

	// Stored row lags behind the session history.
	_, err := statsRepo.FindOrCreate(9)
	require.NoError(t, err)

	data, err := svc.GetStreaks(9)
	require.NoError(t, err)

	assert.Equal(t, 2, data.CurrentStreak)
	assert.Equal(t, 2, data.LongestStreak)
	assert.Len(t, data.Calendar, 2)
	assert.Equal(t, 2, data.Stats["allTime"].TotalModules)

	stats, err := statsRepo.FindByUser(9)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)
}

func TestWindowOver(t *testing.T) {
	sessions := []model.LearningSession{
		{ModulesCompleted: 2, MinutesStudied: 30},
		{ModulesCompleted: 1, MinutesStudied: 10},
		{ModulesCompleted: 3, MinutesStudied: 20},
	}

	w := windowOver(sessions, 2)
	assert.Equal(t, 3, w.TotalModules)
	assert.Equal(t, 40, w.TotalMinutes)
	assert.Equal(t, 2, w.ActiveDays)

	all := windowOver(sessions, 10)
	assert.Equal(t, 6, all.TotalModules)
	assert.Equal(t, 3, all.ActiveDays)
}
