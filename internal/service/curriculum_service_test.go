package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bcs_edu_backend/internal/model"
	"bcs_edu_backend/internal/repository"
)

func newCurriculumService(db *gorm.DB) *CurriculumService {
	return NewCurriculumService(
		repository.NewCourseRepository(db),
		repository.NewTrackingRepository(db),
		repository.NewGamificationRepository(db),
		repository.NewUserRepository(db),
		nil, // cache disabled in tests
	)
}

func seedCourseWithPrereqs(t *testing.T, db *gorm.DB, slug string, prereqs []uint) *model.Course {
	c := &model.Course{
		Title:           slug,
		Slug:            slug,
		Status:          model.StatusPublished,
		PrerequisiteIDs: prereqs,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestCurriculumMap_Anonymous(t *testing.T) {
	db := setupTestDB(t)
	svc := newCurriculumService(db)

	seedCourseWithPrereqs(t, db, "intro", nil)
	seedCourseWithPrereqs(t, db, "advanced", nil)

	curriculum, err := svc.GetMap(0)
	require.NoError(t, err)

	assert.Equal(t, 2, curriculum.TotalCourses)
	assert.Nil(t, curriculum.UserProgress)
	for _, node := range curriculum.Courses {
		assert.Equal(t, StatusViewable, node.Status)
	}
}

func TestCurriculumMap_AuthenticatedStatuses(t *testing.T) {
	db := setupTestDB(t)
	svc := newCurriculumService(db)

	intro := seedCourseWithPrereqs(t, db, "intro", nil)
	advanced := seedCourseWithPrereqs(t, db, "advanced", []uint{intro.ID})
	elective := seedCourseWithPrereqs(t, db, "elective", nil)

	now := time.Now()
	// Intro fully completed, elective started but unfinished.
	require.NoError(t, db.Create(&model.CourseTracking{
		CourseID:      intro.ID,
		UserID:        7,
		Status:        "completed",
		CompletionPct: 100,
		StartedAt:     now,
		LastAccessed:  now,
	}).Error)
	require.NoError(t, db.Create(&model.CourseTracking{
		CourseID:      elective.ID,
		UserID:        7,
		Status:        "in_progress",
		CompletionPct: 40,
		StartedAt:     now,
		LastAccessed:  now,
	}).Error)

	curriculum, err := svc.GetMap(7)
	require.NoError(t, err)

	statuses := make(map[uint]NodeStatus)
	for _, node := range curriculum.Courses {
		statuses[node.ID] = node.Status
	}

	assert.Equal(t, StatusCompleted, statuses[intro.ID])
	assert.Equal(t, StatusAvailable, statuses[advanced.ID], "prerequisite course done, now reachable")
	assert.Equal(t, StatusActive, statuses[elective.ID])

	require.NotNil(t, curriculum.UserProgress)
	assert.Equal(t, 2, curriculum.UserProgress.CoursesStarted)
	assert.Equal(t, 1, curriculum.UserProgress.CoursesCompleted)
}

func TestCurriculumMap_PrereqGateLocks(t *testing.T) {
	db := setupTestDB(t)
	svc := newCurriculumService(db)

	intro := seedCourseWithPrereqs(t, db, "intro", nil)
	advanced := seedCourseWithPrereqs(t, db, "advanced", []uint{intro.ID})

	curriculum, err := svc.GetMap(7)
	require.NoError(t, err)

	statuses := make(map[uint]NodeStatus)
	for _, node := range curriculum.Courses {
		statuses[node.ID] = node.Status
	}
	assert.Equal(t, StatusAvailable, statuses[intro.ID])
	assert.Equal(t, StatusLocked, statuses[advanced.ID])
}
