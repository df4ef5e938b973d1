package model

import "time"

// LearningSession aggregates one user's activity for one calendar day.
// Created on the first activity of the day, incremented afterwards; feeds
// streak computation and the calendar heatmap.
type LearningSession struct {
	BaseModel
	UserID           uint      `gorm:"uniqueIndex:idx_user_date;not null" json:"userId"`
	Date             time.Time `gorm:"uniqueIndex:idx_user_date;not null" json:"date"`
	ModulesCompleted int       `gorm:"default:0" json:"modulesCompleted"`
	ModulesViewed    int       `gorm:"default:0" json:"modulesViewed"`
	MinutesStudied   int       `gorm:"default:0" json:"minutesStudied"`
	FirstActivity    time.Time `json:"firstActivity"`
	LastActivity     time.Time `json:"lastActivity"`
}

func (LearningSession) TableName() string {
	return "learning_sessions"
}
