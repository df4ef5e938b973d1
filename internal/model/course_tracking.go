package model

import "time"

// CourseTracking doubles as the enrollment relation and the per-course rollup.
// The counters are denormalized but never drifted incrementally: every
// completion recomputes them from a fresh count of completed progress rows.
type CourseTracking struct {
	BaseModel
	CourseID         uint      `gorm:"uniqueIndex:idx_course_user;not null" json:"courseId"`
	UserID           uint      `gorm:"uniqueIndex:idx_course_user;not null" json:"userId"`
	Status           string    `gorm:"size:20;default:'in_progress'" json:"status"`
	ModulesCompleted int       `gorm:"default:0" json:"modulesCompleted"`
	ModulesTotal     int       `gorm:"default:0" json:"modulesTotal"`
	CompletionPct    int       `gorm:"default:0" json:"completionPct"`
	StartedAt        time.Time `json:"startedAt"`
	LastAccessed     time.Time `json:"lastAccessed"`
}

func (CourseTracking) TableName() string {
	return "course_tracking"
}
