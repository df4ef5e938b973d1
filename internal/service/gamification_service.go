package service

import (
	"math"
	"time"

	"bcs_edu_backend/internal/model"
	"bcs_edu_backend/internal/repository"
)

type GamificationService struct {
	StatsRepo   *repository.GamificationRepository
	SessionRepo *repository.SessionRepository
}

func NewGamificationService(
	statsRepo *repository.GamificationRepository,
	sessionRepo *repository.SessionRepository,
) *GamificationService {
	return &GamificationService{
		StatsRepo:   statsRepo,
		SessionRepo: sessionRepo,
	}
}

type RewardResult struct {
	TotalXP   int  `json:"totalXp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveledUp"`
}

// LevelForXP is the only level curve: level n requires 100*n^2 total XP.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 0
	}
	return int(math.Floor(math.Sqrt(float64(totalXP) / 100)))
}

// ApplyReward adds xp to the user's running total with an atomic increment
// and recomputes the level from the post-increment value. Callers that have
// further bonus XP for the same event (the achievement evaluator) call this
// again with the bonus so the last invocation produces the single
// authoritative level for the whole event.
func (s *GamificationService) ApplyReward(userID uint, xp int) (*RewardResult, error) {
	stats, err := s.StatsRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}
	previousLevel := stats.Level

	if err := s.StatsRepo.AddXP(userID, xp); err != nil {
		return nil, err
	}

	updated, err := s.StatsRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	newLevel := LevelForXP(updated.TotalXP)
	if newLevel != updated.Level {
		if err := s.StatsRepo.SetLevel(userID, newLevel); err != nil {
			return nil, err
		}
	}

	return &RewardResult{
		TotalXP:   updated.TotalXP,
		Level:     newLevel,
		LeveledUp: newLevel > previousLevel,
	}, nil
}

type StreakData struct {
	CurrentStreak  int               `json:"currentStreak"`
	LongestStreak  int               `json:"longestStreak"`
	LastActiveDate *time.Time        `json:"lastActiveDate"`
	Calendar       []CalendarDay     `json:"calendar"`
	Stats          map[string]Window `json:"stats"`
}

type CalendarDay struct {
	Date             string `json:"date"`
	ModulesCompleted int    `json:"count"`
	ModulesViewed    int    `json:"modulesViewed"`
	MinutesStudied   int    `json:"minutesStudied"`
}

type Window struct {
	TotalModules int `json:"totalModules"`
	TotalMinutes int `json:"totalMinutes"`
	ActiveDays   int `json:"activeDays"`
}

// GetStreaks recomputes streaks from the last year of learning sessions and
// reconciles the stored stats row when it lags behind.
func (s *GamificationService) GetStreaks(userID uint) (*StreakData, error) {
	stats, err := s.StatsRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.SessionRepo.ListSince(userID, time.Now().AddDate(-1, 0, 0))
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, len(sessions))
	for i, sess := range sessions {
		dates[i] = sess.Date
	}

	current := CurrentStreak(dates, time.Now())
	longest := LongestStreak(dates)
	if longest < stats.LongestStreak {
		longest = stats.LongestStreak
	}

	if stats.CurrentStreak != current || stats.LongestStreak < longest {
		if err := s.StatsRepo.UpdateStreaks(userID, current, longest); err != nil {
			return nil, err
		}
	}

	calendar := make([]CalendarDay, len(sessions))
	for i, sess := range sessions {
		calendar[i] = CalendarDay{
			Date:             sess.Date.Format("2006-01-02"),
			ModulesCompleted: sess.ModulesCompleted,
			ModulesViewed:    sess.ModulesViewed,
			MinutesStudied:   sess.MinutesStudied,
		}
	}

	var lastActive *time.Time
	if !stats.LastActiveDate.IsZero() {
		lastActive = &stats.LastActiveDate
	}

	return &StreakData{
		CurrentStreak:  current,
		LongestStreak:  longest,
		LastActiveDate: lastActive,
		Calendar:       calendar,
		Stats: map[string]Window{
			"last7Days":  windowOver(sessions, 7),
			"last30Days": windowOver(sessions, 30),
			"allTime":    windowOver(sessions, len(sessions)),
		},
	}, nil
}

func windowOver(sessions []model.LearningSession, n int) Window {
	if n > len(sessions) {
		n = len(sessions)
	}
	w := Window{ActiveDays: n}
	for _, sess := range sessions[:n] {
		w.TotalModules += sess.ModulesCompleted
		w.TotalMinutes += sess.MinutesStudied
	}
	return w
}

// CurrentStreak counts consecutive active days ending today or yesterday.
// An unbroken run that ended two or more days ago is worth zero.
func CurrentStreak(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	days := uniqueDaysDesc(dates)

	today := truncateDay(now)
	yesterday := today.AddDate(0, 0, -1)

	var cursor time.Time
	switch {
	case days[0].Equal(today):
		cursor = yesterday
	case days[0].Equal(yesterday):
		cursor = yesterday.AddDate(0, 0, -1)
	default:
		return 0
	}

	streak := 1
	for _, day := range days[1:] {
		if day.Equal(cursor) {
			streak++
			cursor = cursor.AddDate(0, 0, -1)
		} else if day.Before(cursor) {
			break
		}
	}
	return streak
}

// LongestStreak finds the longest run of consecutive active days anywhere in
// the history.
func LongestStreak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	days := uniqueDaysDesc(dates)

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		// days is descending, so a gap of exactly one day continues the run
		if days[i-1].Sub(days[i]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func uniqueDaysDesc(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	var days []time.Time
	for _, d := range dates {
		day := truncateDay(d)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	for i := 1; i < len(days); i++ {
		for j := i; j > 0 && days[j].After(days[j-1]); j-- {
			days[j], days[j-1] = days[j-1], days[j]
		}
	}
	return days
}
