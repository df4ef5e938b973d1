package model

// ContentStatus gates learner-facing visibility. Only published nodes
// participate in progression graphs.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
)

type QuestType string

const (
	QuestReading   QuestType = "reading"
	QuestExercise  QuestType = "exercise"
	QuestChallenge QuestType = "challenge"
)

// Module is a unit of learnable content. Modules form two graphs at once:
// a parent/child hierarchy (standalone e-textbook tree) and, inside a course,
// a prerequisite DAG stored as a denormalized id list on the dependent node.
// swagger:model Module
type Module struct {
	BaseModel
	Title            string        `gorm:"size:255;not null" json:"title"`
	Slug             string        `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description      string        `gorm:"type:text" json:"description"`
	Status           ContentStatus `gorm:"size:20;default:'draft';index" json:"status"`
	ParentModuleID   *uint         `gorm:"index" json:"parentModuleId"`
	SortOrder        int           `gorm:"default:0" json:"sortOrder"`
	XPReward         int           `gorm:"default:50" json:"xpReward"`
	DifficultyLevel  string        `gorm:"size:20;default:'beginner'" json:"difficultyLevel"`
	QuestType        QuestType     `gorm:"size:20;default:'reading'" json:"questType"`
	EstimatedMinutes int           `gorm:"default:0" json:"estimatedMinutes"`
	PrerequisiteIDs  []uint        `gorm:"serializer:json" json:"prerequisiteIds"`
	QuestMapX        float64       `gorm:"default:50" json:"questMapX"`
	QuestMapY        float64       `gorm:"default:50" json:"questMapY"`
	AuthorID         uint          `gorm:"index" json:"authorId"`
}

func (Module) TableName() string {
	return "modules"
}
