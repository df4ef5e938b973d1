package service

import (
	"bcs_edu_backend/internal/model"
	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/pkg/logger"

	"go.uber.org/zap"
)

// AchievementService is the evaluator invoked once per completion event,
// after the completion transaction has committed. Its failures degrade
// gracefully: the base completion and XP stand even when evaluation errors.
type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	ProgressRepo    *repository.ProgressRepository
	TrackingRepo    *repository.TrackingRepository
	StatsRepo       *repository.GamificationRepository
	ModuleRepo      *repository.ModuleRepository
	UserRepo        *repository.UserRepository
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	progressRepo *repository.ProgressRepository,
	trackingRepo *repository.TrackingRepository,
	statsRepo *repository.GamificationRepository,
	moduleRepo *repository.ModuleRepository,
	userRepo *repository.UserRepository,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		ProgressRepo:    progressRepo,
		TrackingRepo:    trackingRepo,
		StatsRepo:       statsRepo,
		ModuleRepo:      moduleRepo,
		UserRepo:        userRepo,
	}
}

type EarnedAchievement struct {
	ID         uint   `json:"id"`
	Code       string `json:"code"`
	Title      string `json:"title"`
	Icon       string `json:"icon"`
	BadgeColor string `json:"badgeColor"`
	XPReward   int    `json:"xpReward"`
}

type AchievementCheckResult struct {
	NewAchievements []EarnedAchievement `json:"newAchievements"`
	BonusXP         int                 `json:"bonusXp"`
}

// CheckAfterCompletion evaluates every definition the user has not yet earned
// against their current progress and awards the ones whose criteria are met.
// Returns the bonus XP total to be merged into the completion's level
// recompute.
func (s *AchievementService) CheckAfterCompletion(userID, moduleID uint, courseID *uint) (*AchievementCheckResult, error) {
	result := &AchievementCheckResult{NewAchievements: []EarnedAchievement{}}

	definitions, err := s.AchievementRepo.ListAll()
	if err != nil {
		return nil, err
	}
	earned, err := s.AchievementRepo.EarnedIDs(userID)
	if err != nil {
		return nil, err
	}

	modulesCompleted, err := s.ProgressRepo.CountCompleted(userID)
	if err != nil {
		return nil, err
	}
	coursesCompleted, err := s.TrackingRepo.CountCompletedCourses(userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.StatsRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	completedModule, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		return nil, err
	}

	for _, def := range definitions {
		if earned[def.ID] {
			continue
		}

		met, err := s.criteriaMet(&def, userID, courseID, modulesCompleted, coursesCompleted, stats.CurrentStreak, completedModule)
		if err != nil {
			logger.Log.Warn("achievement criteria check failed",
				zap.Uint("userId", userID),
				zap.String("achievement", def.Code),
				zap.Error(err))
			continue
		}
		if !met {
			continue
		}

		if err := s.AchievementRepo.Award(userID, def.ID); err != nil {
			logger.Log.Warn("achievement award failed",
				zap.Uint("userId", userID),
				zap.String("achievement", def.Code),
				zap.Error(err))
			continue
		}

		result.NewAchievements = append(result.NewAchievements, EarnedAchievement{
			ID:         def.ID,
			Code:       def.Code,
			Title:      def.Title,
			Icon:       def.Icon,
			BadgeColor: def.BadgeColor,
			XPReward:   def.XPReward,
		})
		result.BonusXP += def.XPReward
	}

	return result, nil
}

func (s *AchievementService) criteriaMet(
	def *model.Achievement,
	userID uint,
	courseID *uint,
	modulesCompleted, coursesCompleted int64,
	currentStreak int,
	completedModule *model.Module,
) (bool, error) {
	switch def.CriteriaType {
	case model.CriteriaModulesCompleted:
		return modulesCompleted >= int64(def.Threshold), nil

	case model.CriteriaCoursesCompleted:
		return coursesCompleted >= int64(def.Threshold), nil

	case model.CriteriaStreak:
		return currentStreak >= def.Threshold, nil

	case model.CriteriaPerfectCourse:
		if courseID == nil {
			return false, nil
		}
		tracking, err := s.TrackingRepo.FindByCourseAndUser(*courseID, userID)
		if err != nil {
			return false, err
		}
		return tracking.CompletionPct == 100, nil

	case model.CriteriaModuleDifficulty:
		if completedModule.DifficultyLevel != def.Difficulty {
			return false, nil
		}
		count, err := s.ProgressRepo.CountCompletedByDifficulty(userID, def.Difficulty)
		if err != nil {
			return false, err
		}
		return count >= int64(def.Threshold), nil
	}

	return false, nil
}

type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	User  string `json:"user"`
	XP    int    `json:"xp"`
	Level int    `json:"level"`
}

func (s *AchievementService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := s.StatsRepo.TopByXP(limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.UserID
	}
	users, err := s.UserRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	leaderboard := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		leaderboard[i] = LeaderboardEntry{
			Rank:  i + 1,
			User:  names[row.UserID],
			XP:    row.TotalXP,
			Level: row.Level,
		}
	}
	return leaderboard, nil
}

func (s *AchievementService) ListDefinitions() ([]model.Achievement, error) {
	return s.AchievementRepo.ListAll()
}

func (s *AchievementService) ListEarned(userID uint) ([]model.Achievement, error) {
	return s.AchievementRepo.ListEarnedByUser(userID)
}
