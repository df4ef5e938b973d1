package repository

import (
	"bcs_edu_backend/internal/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r *SessionRepository) FindByUserAndDate(userID uint, date time.Time) (*model.LearningSession, error) {
	var s model.LearningSession
	err := r.DB.Where("user_id = ? AND date = ?", userID, startOfDay(date)).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordCompletion bumps today's completed-module counter, creating the day
// row on first activity.
func (r *SessionRepository) RecordCompletion(userID uint, now time.Time) error {
	return r.bump(userID, now, "modules_completed")
}

// RecordView bumps today's viewed-module counter.
func (r *SessionRepository) RecordView(userID uint, now time.Time) error {
	return r.bump(userID, now, "modules_viewed")
}

func (r *SessionRepository) bump(userID uint, now time.Time, column string) error {
	today := startOfDay(now)

	var s model.LearningSession
	err := r.DB.Where("user_id = ? AND date = ?", userID, today).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = model.LearningSession{
			UserID:        userID,
			Date:          today,
			FirstActivity: now,
			LastActivity:  now,
		}
		switch column {
		case "modules_completed":
			s.ModulesCompleted = 1
		case "modules_viewed":
			s.ModulesViewed = 1
		}
		return r.DB.Create(&s).Error
	}
	if err != nil {
		return err
	}

	return r.DB.Model(&model.LearningSession{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			column:          gorm.Expr(column+" + 1"),
			"last_activity": now,
		}).Error
}

// ListSince returns the user's day rows newest first, for streak and heatmap
// computation.
func (r *SessionRepository) ListSince(userID uint, since time.Time) ([]model.LearningSession, error) {
	var rows []model.LearningSession
	err := r.DB.Where("user_id = ? AND date >= ?", userID, startOfDay(since)).
		Order("date desc").
		Find(&rows).Error
	return rows, err
}
