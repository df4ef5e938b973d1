package repository

import (
	"bcs_edu_backend/internal/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

type GamificationRepository struct {
	DB *gorm.DB
}

func NewGamificationRepository(db *gorm.DB) *GamificationRepository {
	return &GamificationRepository{DB: db}
}

func (r *GamificationRepository) FindOrCreate(userID uint) (*model.GamificationStats, error) {
	var stats model.GamificationStats
	err := r.DB.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = model.GamificationStats{UserID: userID}
		if err := r.DB.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *GamificationRepository) FindByUser(userID uint) (*model.GamificationStats, error) {
	var stats model.GamificationStats
	err := r.DB.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AddXP increments total_xp at the storage layer so concurrent rewards for
// the same user both land. Callers recompute and persist the level afterwards.
func (r *GamificationRepository) AddXP(userID uint, xp int) error {
	return r.DB.Model(&model.GamificationStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_xp":         gorm.Expr("total_xp + ?", xp),
			"last_active_date": time.Now(),
		}).Error
}

func (r *GamificationRepository) SetLevel(userID uint, level int) error {
	return r.DB.Model(&model.GamificationStats{}).
		Where("user_id = ?", userID).
		Update("level", level).Error
}

func (r *GamificationRepository) UpdateStreaks(userID uint, current, longest int) error {
	return r.DB.Model(&model.GamificationStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_streak": current,
			"longest_streak": longest,
		}).Error
}

// TopByXP powers the leaderboard.
func (r *GamificationRepository) TopByXP(limit int) ([]model.GamificationStats, error) {
	var rows []model.GamificationStats
	err := r.DB.Order("total_xp desc").Limit(limit).Find(&rows).Error
	return rows, err
}
