package repository

import (
	"bcs_edu_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type TrackingRepository struct {
	DB *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{DB: db}
}

func (r *TrackingRepository) Create(t *model.CourseTracking) error {
	return r.DB.Create(t).Error
}

func (r *TrackingRepository) FindByCourseAndUser(courseID, userID uint) (*model.CourseTracking, error) {
	var t model.CourseTracking
	err := r.DB.Where("course_id = ? AND user_id = ?", courseID, userID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TrackingRepository) ListByUser(userID uint) ([]model.CourseTracking, error) {
	var rows []model.CourseTracking
	err := r.DB.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

// EnrolledCourseIDs filters the given course ids down to those the user has a
// tracking row for.
func (r *TrackingRepository) EnrolledCourseIDs(userID uint, courseIDs []uint) ([]uint, error) {
	var ids []uint
	if len(courseIDs) == 0 {
		return ids, nil
	}
	err := r.DB.Model(&model.CourseTracking{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error
	return ids, err
}

// UpdateRollup overwrites the denormalized counters with freshly recomputed
// values. Never used for incremental adjustment.
func (r *TrackingRepository) UpdateRollup(courseID, userID uint, completed, total, pct int, status string) error {
	return r.DB.Model(&model.CourseTracking{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Updates(map[string]interface{}{
			"modules_completed": completed,
			"modules_total":     total,
			"completion_pct":    pct,
			"status":            status,
			"last_accessed":     time.Now(),
		}).Error
}

func (r *TrackingRepository) CountCompletedCourses(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseTracking{}).
		Where("user_id = ? AND completion_pct = 100", userID).
		Count(&count).Error
	return count, err
}
