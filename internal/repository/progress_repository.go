package repository

import (
	"bcs_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func courseKey(courseID *uint) uint {
	if courseID == nil {
		return 0
	}
	return *courseID
}

// FindByKey looks up the single record for a (user, module, course) triple;
// courseID nil addresses the standalone record.
func (r *ProgressRepository) FindByKey(userID, moduleID uint, courseID *uint) (*model.ModuleProgress, error) {
	var p model.ModuleProgress
	err := r.DB.Where("user_id = ? AND module_id = ? AND course_key = ?",
		userID, moduleID, courseKey(courseID)).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) Save(p *model.ModuleProgress) error {
	return r.DB.Save(p).Error
}

func (r *ProgressRepository) Create(p *model.ModuleProgress) error {
	return r.DB.Create(p).Error
}

// DeleteByKey removes the record for one context; DeleteAllForModule removes
// the records for every context (course-scoped and standalone alike).
func (r *ProgressRepository) DeleteByKey(userID, moduleID uint, courseID *uint) error {
	return r.DB.Unscoped().
		Where("user_id = ? AND module_id = ? AND course_key = ?",
			userID, moduleID, courseKey(courseID)).
		Delete(&model.ModuleProgress{}).Error
}

func (r *ProgressRepository) DeleteAllForModule(userID, moduleID uint) error {
	return r.DB.Unscoped().
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Delete(&model.ModuleProgress{}).Error
}

func (r *ProgressRepository) FindByUserAndCourse(userID, courseID uint) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	err := r.DB.Where("user_id = ? AND course_key = ?", userID, courseID).Find(&rows).Error
	return rows, err
}

// CompletedModuleIDs returns the completed set for one user scoped to a
// course (or standalone when courseID is nil).
func (r *ProgressRepository) CompletedModuleIDs(userID uint, courseID *uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.ModuleProgress{}).
		Where("user_id = ? AND course_key = ? AND status = ?",
			userID, courseKey(courseID), model.ProgressCompleted).
		Pluck("module_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *ProgressRepository) CountCompletedInCourse(userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ModuleProgress{}).
		Where("user_id = ? AND course_key = ? AND status = ?",
			userID, courseID, model.ProgressCompleted).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ModuleProgress{}).
		Where("user_id = ? AND status = ?", userID, model.ProgressCompleted).
		Count(&count).Error
	return count, err
}

// CountCompletedByDifficulty joins against modules for difficulty-based
// achievement criteria.
func (r *ProgressRepository) CountCompletedByDifficulty(userID uint, difficulty string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ModuleProgress{}).
		Joins("JOIN modules ON modules.id = module_progress.module_id").
		Where("module_progress.user_id = ? AND module_progress.status = ? AND modules.difficulty_level = ?",
			userID, model.ProgressCompleted, difficulty).
		Count(&count).Error
	return count, err
}
