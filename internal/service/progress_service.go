package service

import (
	"errors"
	"time"

	"bcs_edu_backend/internal/model"
	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/internal/util"
	"bcs_edu_backend/pkg/logger"
	"bcs_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService is the completion ledger. A completion event runs as one
// transaction (progress upsert, rollup recompute, session bump, base XP),
// then the achievement evaluator runs outside it and its bonus is merged
// before the single level recompute for the event.
type ProgressService struct {
	ModuleRepo   *repository.ModuleRepository
	CourseRepo   *repository.CourseRepository
	TrackingRepo *repository.TrackingRepository
	ProgressRepo *repository.ProgressRepository
	Gamification *GamificationService
	Achievements *AchievementService
	DB           *gorm.DB
}

func NewProgressService(
	moduleRepo *repository.ModuleRepository,
	courseRepo *repository.CourseRepository,
	trackingRepo *repository.TrackingRepository,
	progressRepo *repository.ProgressRepository,
	gamification *GamificationService,
	achievements *AchievementService,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		ModuleRepo:   moduleRepo,
		CourseRepo:   courseRepo,
		TrackingRepo: trackingRepo,
		ProgressRepo: progressRepo,
		Gamification: gamification,
		Achievements: achievements,
		DB:           db,
	}
}

type ModuleRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// CompletionResult is the combined outcome of one mark-complete call. Mode
// tells the caller which dispatch path ran: "course" (explicit context),
// "auto-linked" (fanned out over enrollments) or "standalone".
type CompletionResult struct {
	Success          bool                `json:"success"`
	Mode             string              `json:"mode"`
	AlreadyCompleted bool                `json:"alreadyCompleted"`
	XPAwarded        int                 `json:"xpAwarded"`
	TotalXP          int                 `json:"totalXp"`
	Level            int                 `json:"level"`
	LeveledUp        bool                `json:"leveledUp"`
	LinkedCourses    int                 `json:"linkedCourses,omitempty"`
	ModulesCompleted int                 `json:"modulesCompleted"`
	ModulesTotal     int                 `json:"modulesTotal"`
	CompletionPct    int                 `json:"completionPct"`
	NewlyUnlocked    []ModuleRef         `json:"newlyUnlockedModules"`
	Achievements     []EarnedAchievement `json:"achievements"`
}

// MarkComplete records a completion for the user in one of three modes:
// explicit course context (enrollment required), auto-linked (no context
// given, fanned out over every enrolled course containing the module), or
// standalone (no context given, no relevant enrollment).
func (s *ProgressService) MarkComplete(userID, moduleID uint, courseID *uint) (*CompletionResult, error) {
	module, err := s.ModuleRepo.FindPublishedByID(moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}

	// Mode 1: explicit course context
	if courseID != nil {
		if _, err := s.TrackingRepo.FindByCourseAndUser(*courseID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrNotEnrolled
			}
			return nil, err
		}
		result, err := s.completeInContext(userID, module, courseID)
		if err != nil {
			return nil, err
		}
		result.Mode = "course"
		return result, nil
	}

	containing, err := s.CourseRepo.CourseIDsContainingModule(moduleID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.TrackingRepo.EnrolledCourseIDs(userID, containing)
	if err != nil {
		return nil, err
	}

	// Mode 2: auto-link to every enrolled course that contains the module
	if len(enrolled) > 0 {
		var first *CompletionResult
		for _, cid := range enrolled {
			cid := cid
			result, err := s.completeInContext(userID, module, &cid)
			if err != nil {
				return nil, err
			}
			if first == nil {
				first = result
			}
		}
		first.Mode = "auto-linked"
		first.LinkedCourses = len(enrolled)
		return first, nil
	}

	// Mode 3: standalone
	result, err := s.completeInContext(userID, module, nil)
	if err != nil {
		return nil, err
	}
	result.Mode = "standalone"
	return result, nil
}

// completeInContext performs the transactional unit for one (user, module,
// course) triple and the post-commit achievement merge.
func (s *ProgressService) completeInContext(userID uint, module *model.Module, courseID *uint) (*CompletionResult, error) {
	result := &CompletionResult{
		Success:       true,
		NewlyUnlocked: []ModuleRef{},
		Achievements:  []EarnedAchievement{},
	}

	var previousLevel int

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		progressRepo := repository.NewProgressRepository(tx)
		sessionRepo := repository.NewSessionRepository(tx)
		statsRepo := repository.NewGamificationRepository(tx)
		courseRepo := repository.NewCourseRepository(tx)

		now := time.Now()

		// Idempotent upsert: repeats overwrite, they never re-award.
		existing, err := progressRepo.FindByKey(userID, module.ID, courseID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := &model.ModuleProgress{
				UserID:      userID,
				ModuleID:    module.ID,
				CourseID:    courseID,
				Status:      model.ProgressCompleted,
				StartedAt:   now,
				CompletedAt: &now,
				XPEarned:    module.XPReward,
			}
			if err := progressRepo.Create(record); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			result.AlreadyCompleted = existing.Status == model.ProgressCompleted
			existing.Status = model.ProgressCompleted
			existing.CompletedAt = &now
			existing.XPEarned = module.XPReward
			if err := progressRepo.Save(existing); err != nil {
				return err
			}
		}

		if !result.AlreadyCompleted {
			if err := sessionRepo.RecordCompletion(userID, now); err != nil {
				return err
			}

			stats, err := statsRepo.FindOrCreate(userID)
			if err != nil {
				return err
			}
			previousLevel = stats.Level
			if err := statsRepo.AddXP(userID, module.XPReward); err != nil {
				return err
			}
			result.XPAwarded = module.XPReward
		} else {
			stats, err := statsRepo.FindOrCreate(userID)
			if err != nil {
				return err
			}
			previousLevel = stats.Level
		}

		if courseID != nil {
			if err := s.recomputeRollup(tx, userID, *courseID, result); err != nil {
				return err
			}

			courseModules, err := courseRepo.PublishedModules(*courseID)
			if err != nil {
				return err
			}
			completed, err := progressRepo.CompletedModuleIDs(userID, courseID)
			if err != nil {
				return err
			}
			result.NewlyUnlocked = unlockedRefs(courseModules, module.ID, completed)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ModuleCompletions.Inc()
	if len(result.NewlyUnlocked) > 0 {
		monitoring.ModulesUnlocked.Add(float64(len(result.NewlyUnlocked)))
	}

	// Achievement evaluation is deliberately outside the transaction: its
	// failure must not roll back the recorded completion.
	if !result.AlreadyCompleted {
		check, err := s.Achievements.CheckAfterCompletion(userID, module.ID, courseID)
		if err != nil {
			logger.Log.Warn("achievement evaluation failed after completion",
				zap.Uint("userId", userID),
				zap.Uint("moduleId", module.ID),
				zap.Error(err))
		} else {
			result.Achievements = check.NewAchievements
			if check.BonusXP > 0 {
				if err := s.Gamification.StatsRepo.AddXP(userID, check.BonusXP); err != nil {
					return nil, err
				}
			}
		}
	}

	// Base and bonus are both in the total before the one level recompute
	// for this event.
	stats, err := s.Gamification.StatsRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	level := LevelForXP(stats.TotalXP)
	if level != stats.Level {
		if err := s.Gamification.StatsRepo.SetLevel(userID, level); err != nil {
			return nil, err
		}
	}
	result.TotalXP = stats.TotalXP
	result.Level = level
	result.LeveledUp = level > previousLevel

	return result, nil
}

// recomputeRollup overwrites the course counters from a fresh count of
// completed records; counters are never adjusted in place.
func (s *ProgressService) recomputeRollup(tx *gorm.DB, userID, courseID uint, result *CompletionResult) error {
	progressRepo := repository.NewProgressRepository(tx)
	courseRepo := repository.NewCourseRepository(tx)
	trackingRepo := repository.NewTrackingRepository(tx)

	completedCount, err := progressRepo.CountCompletedInCourse(userID, courseID)
	if err != nil {
		return err
	}
	total, err := courseRepo.ModuleCount(courseID)
	if err != nil {
		return err
	}

	pct := 0
	if total > 0 {
		pct = int(float64(completedCount)/float64(total)*100 + 0.5)
	}
	status := "in_progress"
	if pct == 100 {
		status = "completed"
	}

	result.ModulesCompleted = int(completedCount)
	result.ModulesTotal = int(total)
	result.CompletionPct = pct

	return trackingRepo.UpdateRollup(courseID, userID, int(completedCount), int(total), pct, status)
}

func unlockedRefs(courseModules []model.Module, justCompletedID uint, completed map[uint]bool) []ModuleRef {
	ids := make([]uint, len(courseModules))
	prereqsOf := make(map[uint][]uint, len(courseModules))
	titles := make(map[uint]string, len(courseModules))
	for i, m := range courseModules {
		ids[i] = m.ID
		prereqsOf[m.ID] = m.PrerequisiteIDs
		titles[m.ID] = m.Title
	}

	refs := []ModuleRef{}
	for _, id := range NewlyUnlocked(ids, prereqsOf, justCompletedID, completed) {
		refs = append(refs, ModuleRef{ID: id, Title: titles[id]})
	}
	return refs
}

// MarkIncomplete toggles a completion off. The matching record is deleted
// outright; earned XP, session counts and rollups are left alone.
func (s *ProgressService) MarkIncomplete(userID, moduleID uint, courseID *uint) error {
	if courseID != nil {
		return s.ProgressRepo.DeleteByKey(userID, moduleID, courseID)
	}
	return s.ProgressRepo.DeleteAllForModule(userID, moduleID)
}

// StartModule records an in-progress interaction. A completed record is left
// untouched; an existing in-progress record gets another attempt.
func (s *ProgressService) StartModule(userID, moduleID uint, courseID *uint) (*model.ModuleProgress, error) {
	module, err := s.ModuleRepo.FindPublishedByID(moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}

	// Same gate as MarkComplete: a course context requires enrollment.
	if courseID != nil {
		if _, err := s.TrackingRepo.FindByCourseAndUser(*courseID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrNotEnrolled
			}
			return nil, err
		}
	}

	var record *model.ModuleProgress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progressRepo := repository.NewProgressRepository(tx)
		sessionRepo := repository.NewSessionRepository(tx)

		now := time.Now()
		existing, err := progressRepo.FindByKey(userID, module.ID, courseID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = &model.ModuleProgress{
				UserID:    userID,
				ModuleID:  module.ID,
				CourseID:  courseID,
				Status:    model.ProgressInProgress,
				StartedAt: now,
				Attempts:  1,
			}
			if err := progressRepo.Create(record); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if existing.Status != model.ProgressCompleted {
				existing.Status = model.ProgressInProgress
			}
			existing.Attempts++
			if err := progressRepo.Save(existing); err != nil {
				return err
			}
			record = existing
		}

		return sessionRepo.RecordView(userID, now)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

type CourseProgressView struct {
	Progress       map[uint]ModuleProgressView `json:"progress"`
	CourseProgress *RollupView                 `json:"courseProgress"`
}

type ModuleProgressView struct {
	Status      model.ProgressStatus `json:"status"`
	StartedAt   *time.Time           `json:"startedAt"`
	CompletedAt *time.Time           `json:"completedAt"`
	XPEarned    int                  `json:"xpEarned"`
	Attempts    int                  `json:"attempts"`
}

type RollupView struct {
	CompletionPct    int       `json:"completionPct"`
	ModulesCompleted int       `json:"modulesCompleted"`
	ModulesTotal     int       `json:"modulesTotal"`
	StartedAt        time.Time `json:"startedAt"`
	LastAccessed     time.Time `json:"lastAccessed"`
}

// GetCourseProgress returns the per-module progress map plus the stored
// rollup for one course.
func (s *ProgressService) GetCourseProgress(userID, courseID uint) (*CourseProgressView, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	records, err := s.ProgressRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}

	view := &CourseProgressView{Progress: make(map[uint]ModuleProgressView, len(records))}
	for _, rec := range records {
		var started *time.Time
		if !rec.StartedAt.IsZero() {
			t := rec.StartedAt
			started = &t
		}
		view.Progress[rec.ModuleID] = ModuleProgressView{
			Status:      rec.Status,
			StartedAt:   started,
			CompletedAt: rec.CompletedAt,
			XPEarned:    rec.XPEarned,
			Attempts:    rec.Attempts,
		}
	}

	tracking, err := s.TrackingRepo.FindByCourseAndUser(courseID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if tracking != nil {
		view.CourseProgress = &RollupView{
			CompletionPct:    tracking.CompletionPct,
			ModulesCompleted: tracking.ModulesCompleted,
			ModulesTotal:     tracking.ModulesTotal,
			StartedAt:        tracking.StartedAt,
			LastAccessed:     tracking.LastAccessed,
		}
	}

	return view, nil
}
