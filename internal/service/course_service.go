package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bcs_edu_backend/internal/model"
	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/internal/util"
	"bcs_edu_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo   *repository.CourseRepository
	TrackingRepo *repository.TrackingRepository
	ProgressRepo *repository.ProgressRepository
	StatsRepo    *repository.GamificationRepository
	Redis        *redis.Client
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	trackingRepo *repository.TrackingRepository,
	progressRepo *repository.ProgressRepository,
	statsRepo *repository.GamificationRepository,
	rdb *redis.Client,
) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		TrackingRepo: trackingRepo,
		ProgressRepo: progressRepo,
		StatsRepo:    statsRepo,
		Redis:        rdb,
	}
}

const (
	publicMapKeyPrefix = "public_course_map:"
	publicMapTTL       = 5 * time.Minute
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type QuestNode struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	Position         Position   `json:"position"`
	Prerequisites    []uint     `json:"prerequisites"`
	XP               int        `json:"xp"`
	Difficulty       string     `json:"difficulty"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	Type             string     `json:"type"`
	Status           NodeStatus `json:"status"`
	CompletedAt      *time.Time `json:"completedAt"`
	StartedAt        *time.Time `json:"startedAt"`
	XPEarned         int        `json:"xpEarned"`
}

type CourseSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type QuestMap struct {
	Course       CourseSummary `json:"course"`
	Quests       []QuestNode   `json:"quests"`
	UserProgress *UserProgress `json:"userProgress,omitempty"`
}

type UserProgress struct {
	TotalXP        int       `json:"totalXP"`
	Level          int       `json:"level"`
	CompletedCount int       `json:"completedCount"`
	TotalCount     int       `json:"totalCount"`
	CompletionPct  int       `json:"completionPct"`
	CurrentStreak  int       `json:"currentStreak"`
	LongestStreak  int       `json:"longestStreak"`
	StartedAt      time.Time `json:"startedAt"`
	LastAccessed   time.Time `json:"lastAccessed"`
}

// GetQuestMap returns the personalized quest map for an enrolled user: every
// published module of the course with its resolved status.
func (s *CourseService) GetQuestMap(userID uint, slug string) (*QuestMap, error) {
	course, err := s.CourseRepo.FindPublishedBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	tracking, err := s.TrackingRepo.FindByCourseAndUser(course.ID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}

	modules, err := s.CourseRepo.PublishedModules(course.ID)
	if err != nil {
		return nil, err
	}

	records, err := s.ProgressRepo.FindByUserAndCourse(userID, course.ID)
	if err != nil {
		return nil, err
	}
	progressByModule := make(map[uint]*model.ModuleProgress, len(records))
	completed := make(map[uint]bool, len(records))
	for i := range records {
		rec := &records[i]
		progressByModule[rec.ModuleID] = rec
		if rec.Status == model.ProgressCompleted {
			completed[rec.ModuleID] = true
		}
	}

	// The module call site's "started" signal is an explicit in_progress
	// record.
	started := func(id uint) bool {
		rec, ok := progressByModule[id]
		return ok && rec.Status == model.ProgressInProgress
	}

	quests := make([]QuestNode, 0, len(modules))
	completedCount := 0
	for _, m := range modules {
		status := ResolveStatus(m.ID, m.PrerequisiteIDs, completed, started)
		if status == StatusCompleted {
			completedCount++
		}

		node := QuestNode{
			ID:               m.ID,
			Title:            m.Title,
			Slug:             m.Slug,
			Description:      m.Description,
			Position:         Position{X: m.QuestMapX, Y: m.QuestMapY},
			Prerequisites:    prereqList(m.PrerequisiteIDs),
			XP:               m.XPReward,
			Difficulty:       m.DifficultyLevel,
			EstimatedMinutes: m.EstimatedMinutes,
			Type:             string(m.QuestType),
			Status:           status,
		}
		if rec, ok := progressByModule[m.ID]; ok {
			node.CompletedAt = rec.CompletedAt
			if !rec.StartedAt.IsZero() {
				t := rec.StartedAt
				node.StartedAt = &t
			}
			node.XPEarned = rec.XPEarned
		}
		quests = append(quests, node)
	}

	stats, err := s.StatsRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	return &QuestMap{
		Course: CourseSummary{
			ID:          course.ID,
			Title:       course.Title,
			Slug:        course.Slug,
			Description: course.Description,
		},
		Quests: quests,
		UserProgress: &UserProgress{
			TotalXP:        stats.TotalXP,
			Level:          stats.Level,
			CompletedCount: completedCount,
			TotalCount:     len(quests),
			CompletionPct:  tracking.CompletionPct,
			CurrentStreak:  stats.CurrentStreak,
			LongestStreak:  stats.LongestStreak,
			StartedAt:      tracking.StartedAt,
			LastAccessed:   tracking.LastAccessed,
		},
	}, nil
}

// GetPublicMap is the anonymous preview: every published module carries the
// single synthetic "viewable" status, no resolver involved. Results are
// cached briefly in redis since they are identical for all visitors.
func (s *CourseService) GetPublicMap(slug string) (*QuestMap, error) {
	cacheKey := publicMapKeyPrefix + slug
	ctx := context.Background()

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached QuestMap
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("course map cache read failed", zap.Error(err))
		}
	}

	course, err := s.CourseRepo.FindPublishedBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	modules, err := s.CourseRepo.PublishedModules(course.ID)
	if err != nil {
		return nil, err
	}

	quests := make([]QuestNode, 0, len(modules))
	for _, m := range modules {
		quests = append(quests, QuestNode{
			ID:               m.ID,
			Title:            m.Title,
			Slug:             m.Slug,
			Description:      m.Description,
			Position:         Position{X: m.QuestMapX, Y: m.QuestMapY},
			Prerequisites:    prereqList(m.PrerequisiteIDs),
			XP:               m.XPReward,
			Difficulty:       m.DifficultyLevel,
			EstimatedMinutes: m.EstimatedMinutes,
			Type:             string(m.QuestType),
			Status:           StatusViewable,
		})
	}

	questMap := &QuestMap{
		Course: CourseSummary{
			ID:          course.ID,
			Title:       course.Title,
			Slug:        course.Slug,
			Description: course.Description,
		},
		Quests: quests,
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(questMap); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, payload, publicMapTTL).Err(); err != nil {
				logger.Log.Warn("course map cache write failed", zap.Error(err))
			}
		}
	}

	return questMap, nil
}

// Enroll creates the tracking row that doubles as enrollment and rollup.
func (s *CourseService) Enroll(userID uint, slug string) (*model.CourseTracking, error) {
	course, err := s.CourseRepo.FindPublishedBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.TrackingRepo.FindByCourseAndUser(course.ID, userID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	total, err := s.CourseRepo.ModuleCount(course.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tracking := &model.CourseTracking{
		CourseID:     course.ID,
		UserID:       userID,
		Status:       "in_progress",
		ModulesTotal: int(total),
		StartedAt:    now,
		LastAccessed: now,
	}
	if err := s.TrackingRepo.Create(tracking); err != nil {
		return nil, err
	}
	return tracking, nil
}

func prereqList(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}
