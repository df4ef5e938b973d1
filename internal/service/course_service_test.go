package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/internal/util"
)

func newCourseService(db *gorm.DB) *CourseService {
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewTrackingRepository(db),
		repository.NewProgressRepository(db),
		repository.NewGamificationRepository(db),
		nil, // cache disabled in tests
	)
}

func TestEnroll(t *testing.T) {
	db := setupTestDB(t)
	svc := newCourseService(db)

	m1 := seedModule(t, db, "one", 10, nil)
	m2 := seedModule(t, db, "two", 10, nil)
	seedCourse(t, db, "basics", m1.ID, m2.ID)

	tracking, err := svc.Enroll(7, "basics")
	require.NoError(t, err)
	assert.Equal(t, 2, tracking.ModulesTotal)
	assert.Equal(t, "in_progress", tracking.Status)
	assert.False(t, tracking.StartedAt.IsZero())

	_, err = svc.Enroll(7, "basics")
	assert.True(t, errors.Is(err, util.ErrAlreadyEnrolled))

	_, err = svc.Enroll(7, "missing")
	assert.True(t, errors.Is(err, util.ErrCourseNotFound))
}

func TestGetQuestMap_Statuses(t *testing.T) {
	db := setupTestDB(t)
	courseSvc := newCourseService(db)
	progressSvc := newProgressService(db)

	m1 := seedModule(t, db, "start", 10, nil)
	m2 := seedModule(t, db, "gated", 10, []uint{m1.ID})
	m3 := seedModule(t, db, "free", 10, nil)
	course := seedCourse(t, db, "basics", m1.ID, m2.ID, m3.ID)
	seedEnrollment(t, db, 7, course.ID, 3)

	_, err := progressSvc.MarkComplete(7, m1.ID, &course.ID)
	require.NoError(t, err)
	_, err = progressSvc.StartModule(7, m3.ID, &course.ID)
	require.NoError(t, err)

	questMap, err := courseSvc.GetQuestMap(7, "basics")
	require.NoError(t, err)

	statuses := make(map[uint]NodeStatus, len(questMap.Quests))
	for _, q := range questMap.Quests {
		statuses[q.ID] = q.Status
	}

	assert.Equal(t, StatusCompleted, statuses[m1.ID])
	assert.Equal(t, StatusAvailable, statuses[m2.ID], "prerequisite satisfied, unlocked")
	assert.Equal(t, StatusActive, statuses[m3.ID])

	require.NotNil(t, questMap.UserProgress)
	assert.Equal(t, 1, questMap.UserProgress.CompletedCount)
	assert.Equal(t, 3, questMap.UserProgress.TotalCount)
	assert.Equal(t, 10, questMap.UserProgress.TotalXP)
}

func TestGetQuestMap_LockedBehindPrereq(t *testing.T) {
	db := setupTestDB(t)
	svc := newCourseService(db)

	m1 := seedModule(t, db, "start", 10, nil)
	m2 := seedModule(t, db, "gated", 10, []uint{m1.ID})
	course := seedCourse(t, db, "basics", m1.ID, m2.ID)
	seedEnrollment(t, db, 7, course.ID, 2)

	questMap, err := svc.GetQuestMap(7, "basics")
	require.NoError(t, err)

	statuses := make(map[uint]NodeStatus)
	for _, q := range questMap.Quests {
		statuses[q.ID] = q.Status
	}
	assert.Equal(t, StatusAvailable, statuses[m1.ID])
	assert.Equal(t, StatusLocked, statuses[m2.ID])
}

func TestGetPublicMap_AllViewable(t *testing.T) {
	db := setupTestDB(t)
	svc := newCourseService(db)

	m1 := seedModule(t, db, "start", 10, nil)
	m2 := seedModule(t, db, "gated", 10, []uint{m1.ID})
	seedCourse(t, db, "basics", m1.ID, m2.ID)

	questMap, err := svc.GetPublicMap("basics")
	require.NoError(t, err)

	require.Len(t, questMap.Quests, 2)
	for _, q := range questMap.Quests {
		assert.Equal(t, StatusViewable, q.Status, "anonymous preview bypasses resolution")
	}
	assert.Nil(t, questMap.UserProgress)

	_, err = svc.GetPublicMap("missing")
	assert.True(t, errors.Is(err, util.ErrCourseNotFound))
}

func TestGetQuestMap_RequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	svc := newCourseService(db)

	m1 := seedModule(t, db, "one", 10, nil)
	seedCourse(t, db, "basics", m1.ID)

	_, err := svc.GetQuestMap(7, "basics")
	assert.True(t, errors.Is(err, util.ErrNotEnrolled))
}
