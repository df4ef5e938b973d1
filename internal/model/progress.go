package model

import (
	"time"

	"gorm.io/gorm"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// ModuleProgress is the authoritative completion record for one
// (user, module, course) triple. CourseID is nil for standalone completions;
// the same module can hold an independent record per enrolling course.
// CourseKey mirrors CourseID with 0 for standalone so the composite unique
// index holds even where NULLs compare distinct.
type ModuleProgress struct {
	BaseModel
	UserID      uint           `gorm:"uniqueIndex:idx_user_module_course;not null" json:"userId"`
	ModuleID    uint           `gorm:"uniqueIndex:idx_user_module_course;not null" json:"moduleId"`
	CourseID    *uint          `gorm:"index" json:"courseId"`
	CourseKey   uint           `gorm:"uniqueIndex:idx_user_module_course;default:0" json:"-"`
	Status      ProgressStatus `gorm:"size:20;default:'not_started'" json:"status"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`
	XPEarned    int            `gorm:"default:0" json:"xpEarned"`
	Attempts    int            `gorm:"default:0" json:"attempts"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

func (p *ModuleProgress) BeforeSave(tx *gorm.DB) error {
	if p.CourseID != nil {
		p.CourseKey = *p.CourseID
	} else {
		p.CourseKey = 0
	}
	return nil
}
