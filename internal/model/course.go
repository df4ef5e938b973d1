package model

// Course is the flat content graph: no parent/child nesting, ordering and
// membership live on the CourseModule join rows, and unlock dependencies are
// explicit prerequisite course ids.
// swagger:model Course
type Course struct {
	BaseModel
	Title           string        `gorm:"size:255;not null" json:"title"`
	Slug            string        `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description     string        `gorm:"type:text" json:"description"`
	Tags            []string      `gorm:"serializer:json" json:"tags"`
	Featured        bool          `gorm:"default:false" json:"featured"`
	Status          ContentStatus `gorm:"size:20;default:'draft';index" json:"status"`
	PrerequisiteIDs []uint        `gorm:"serializer:json" json:"prerequisiteIds"`
	CurriculumX     float64       `gorm:"default:50" json:"curriculumX"`
	CurriculumY     float64       `gorm:"default:50" json:"curriculumY"`
	InstructorID    uint          `gorm:"index" json:"instructorId"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseModule links a module into a course with a per-course sort order.
type CourseModule struct {
	BaseModel
	CourseID  uint `gorm:"uniqueIndex:idx_course_module;not null" json:"courseId"`
	ModuleID  uint `gorm:"uniqueIndex:idx_course_module;not null" json:"moduleId"`
	SortOrder int  `gorm:"default:0" json:"sortOrder"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}
