package repository

import (
	"bcs_edu_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) ListAll() ([]model.Achievement, error) {
	var rows []model.Achievement
	err := r.DB.Order("id asc").Find(&rows).Error
	return rows, err
}

func (r *AchievementRepository) EarnedIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *AchievementRepository) Award(userID, achievementID uint) error {
	return r.DB.Create(&model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now(),
	}).Error
}

func (r *AchievementRepository) ListEarnedByUser(userID uint) ([]model.Achievement, error) {
	var rows []model.Achievement
	err := r.DB.
		Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ?", userID).
		Order("user_achievements.earned_at desc").
		Find(&rows).Error
	return rows, err
}
