package model

import "time"

// GamificationStats holds one row per user. TotalXP only ever grows and is
// written with an atomic increment expression; Level is a pure function of
// TotalXP (floor(sqrt(totalXp/100))) stored only as a recompute result.
type GamificationStats struct {
	BaseModel
	UserID         uint      `gorm:"uniqueIndex;not null" json:"userId"`
	TotalXP        int       `gorm:"default:0" json:"totalXp"`
	Level          int       `gorm:"default:0" json:"level"`
	CurrentStreak  int       `gorm:"default:0" json:"currentStreak"`
	LongestStreak  int       `gorm:"default:0" json:"longestStreak"`
	LastActiveDate time.Time `json:"lastActiveDate"`
}

func (GamificationStats) TableName() string {
	return "user_gamification_stats"
}
