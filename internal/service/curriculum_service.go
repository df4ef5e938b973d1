package service

import (
	"context"
	"encoding/json"
	"time"

	"bcs_edu_backend/internal/model"
	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CurriculumService computes the course-level progression graph. It is the
// second call site of the status resolver: same algorithm as the quest map,
// with "completed" meaning a 100% (or completed-status) tracking row and
// "started" meaning a non-zero started_at.
type CurriculumService struct {
	CourseRepo   *repository.CourseRepository
	TrackingRepo *repository.TrackingRepository
	StatsRepo    *repository.GamificationRepository
	UserRepo     *repository.UserRepository
	Redis        *redis.Client
}

func NewCurriculumService(
	courseRepo *repository.CourseRepository,
	trackingRepo *repository.TrackingRepository,
	statsRepo *repository.GamificationRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
) *CurriculumService {
	return &CurriculumService{
		CourseRepo:   courseRepo,
		TrackingRepo: trackingRepo,
		StatsRepo:    statsRepo,
		UserRepo:     userRepo,
		Redis:        rdb,
	}
}

const (
	curriculumCacheKey = "public_curriculum_map"
	curriculumCacheTTL = 5 * time.Minute
)

type InstructorInfo struct {
	Name       string `json:"name"`
	AvatarURL  string `json:"avatarUrl"`
	Title      string `json:"title"`
	Department string `json:"department"`
}

type CurriculumNode struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Description   string         `json:"description"`
	Tags          []string       `json:"tags"`
	Featured      bool           `json:"featured"`
	Position      Position       `json:"position"`
	Prerequisites []uint         `json:"prerequisites"`
	ModuleCount   int            `json:"moduleCount"`
	Instructor    InstructorInfo `json:"instructor"`

	// Progress fields, only populated for authenticated callers.
	Status           NodeStatus `json:"status,omitempty"`
	CompletionPct    int        `json:"completionPct,omitempty"`
	ModulesCompleted int        `json:"modulesCompleted,omitempty"`
	ModulesTotal     int        `json:"modulesTotal,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
}

type CurriculumUserProgress struct {
	TotalXP          int `json:"totalXP"`
	Level            int `json:"level"`
	CurrentStreak    int `json:"currentStreak"`
	LongestStreak    int `json:"longestStreak"`
	CoursesStarted   int `json:"coursesStarted"`
	CoursesCompleted int `json:"coursesCompleted"`
}

type CurriculumMap struct {
	Courses      []CurriculumNode        `json:"courses"`
	TotalCourses int                     `json:"totalCourses"`
	UserProgress *CurriculumUserProgress `json:"userProgress,omitempty"`
}

// GetMap serves both audiences: userID == 0 yields the public "viewable"
// variant (cached), anything else resolves per-course statuses against the
// caller's tracking rows.
func (s *CurriculumService) GetMap(userID uint) (*CurriculumMap, error) {
	if userID == 0 {
		return s.publicMap()
	}

	courses, err := s.CourseRepo.FindAllPublished()
	if err != nil {
		return nil, err
	}

	trackings, err := s.TrackingRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	trackingByCourse := make(map[uint]*model.CourseTracking, len(trackings))
	completed := make(map[uint]bool, len(trackings))
	coursesCompleted := 0
	for i := range trackings {
		t := &trackings[i]
		trackingByCourse[t.CourseID] = t
		if t.CompletionPct == 100 || t.Status == "completed" {
			completed[t.CourseID] = true
			coursesCompleted++
		}
	}

	// The course call site's "started" signal is a tracking row with a
	// non-zero start timestamp.
	started := func(id uint) bool {
		t, ok := trackingByCourse[id]
		return ok && !t.StartedAt.IsZero()
	}

	nodes := make([]CurriculumNode, 0, len(courses))
	for _, c := range courses {
		node, err := s.baseNode(&c)
		if err != nil {
			return nil, err
		}
		node.Status = ResolveStatus(c.ID, c.PrerequisiteIDs, completed, started)
		if t, ok := trackingByCourse[c.ID]; ok {
			node.CompletionPct = t.CompletionPct
			node.ModulesCompleted = t.ModulesCompleted
			node.ModulesTotal = t.ModulesTotal
			if !t.StartedAt.IsZero() {
				startedAt := t.StartedAt
				node.StartedAt = &startedAt
			}
		}
		nodes = append(nodes, *node)
	}

	stats, err := s.StatsRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	return &CurriculumMap{
		Courses:      nodes,
		TotalCourses: len(nodes),
		UserProgress: &CurriculumUserProgress{
			TotalXP:          stats.TotalXP,
			Level:            stats.Level,
			CurrentStreak:    stats.CurrentStreak,
			LongestStreak:    stats.LongestStreak,
			CoursesStarted:   len(trackings),
			CoursesCompleted: coursesCompleted,
		},
	}, nil
}

func (s *CurriculumService) publicMap() (*CurriculumMap, error) {
	ctx := context.Background()

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, curriculumCacheKey).Result(); err == nil {
			var cached CurriculumMap
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("curriculum cache read failed", zap.Error(err))
		}
	}

	courses, err := s.CourseRepo.FindAllPublished()
	if err != nil {
		return nil, err
	}

	nodes := make([]CurriculumNode, 0, len(courses))
	for _, c := range courses {
		node, err := s.baseNode(&c)
		if err != nil {
			return nil, err
		}
		node.Status = StatusViewable
		nodes = append(nodes, *node)
	}

	curriculum := &CurriculumMap{Courses: nodes, TotalCourses: len(nodes)}

	if s.Redis != nil {
		if payload, err := json.Marshal(curriculum); err == nil {
			if err := s.Redis.Set(ctx, curriculumCacheKey, payload, curriculumCacheTTL).Err(); err != nil {
				logger.Log.Warn("curriculum cache write failed", zap.Error(err))
			}
		}
	}

	return curriculum, nil
}

func (s *CurriculumService) baseNode(c *model.Course) (*CurriculumNode, error) {
	moduleCount, err := s.CourseRepo.ModuleCount(c.ID)
	if err != nil {
		return nil, err
	}

	node := &CurriculumNode{
		ID:            c.ID,
		Title:         c.Title,
		Slug:          c.Slug,
		Description:   c.Description,
		Tags:          c.Tags,
		Featured:      c.Featured,
		Position:      Position{X: c.CurriculumX, Y: c.CurriculumY},
		Prerequisites: prereqList(c.PrerequisiteIDs),
		ModuleCount:   int(moduleCount),
	}
	if node.Tags == nil {
		node.Tags = []string{}
	}

	if c.InstructorID != 0 {
		instructor, err := s.UserRepo.FindByID(c.InstructorID)
		if err == nil {
			node.Instructor = InstructorInfo{
				Name:       instructor.Name,
				AvatarURL:  instructor.AvatarURL,
				Title:      instructor.Title,
				Department: instructor.Department,
			}
		}
	}

	return node, nil
}
