package model

import "time"

type AchievementCriteria string

const (
	CriteriaModulesCompleted AchievementCriteria = "modules_completed"
	CriteriaCoursesCompleted AchievementCriteria = "courses_completed"
	CriteriaStreak           AchievementCriteria = "streak"
	CriteriaPerfectCourse    AchievementCriteria = "perfect_course"
	CriteriaModuleDifficulty AchievementCriteria = "module_difficulty"
)

// Achievement is a badge definition seeded at migration time. Threshold is
// the numeric criterion (count or days); Difficulty applies only to the
// module_difficulty criteria type.
type Achievement struct {
	BaseModel
	Code         string              `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Title        string              `gorm:"size:100;not null" json:"title"`
	Description  string              `gorm:"size:255" json:"description"`
	Icon         string              `gorm:"size:50" json:"icon"`
	BadgeColor   string              `gorm:"size:20" json:"badgeColor"`
	XPReward     int                 `gorm:"default:0" json:"xpReward"`
	CriteriaType AchievementCriteria `gorm:"size:30;not null" json:"criteriaType"`
	Threshold    int                 `gorm:"default:0" json:"threshold"`
	Difficulty   string              `gorm:"size:20" json:"difficulty"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"userId"`
	AchievementID uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
