package repository

import (
	"bcs_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) FindByID(id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindPublishedByID returns gorm.ErrRecordNotFound for drafts as well as for
// missing rows; learner-facing paths never see unpublished content.
func (r *ModuleRepository) FindPublishedByID(id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.Where("id = ? AND status = ?", id, model.StatusPublished).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ModuleRepository) FindPublishedBySlug(slug string) (*model.Module, error) {
	var m model.Module
	err := r.DB.Where("slug = ? AND status = ?", slug, model.StatusPublished).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAllPublished fetches the whole published hierarchy in one query; the
// tree is assembled in memory instead of refetching level by level.
func (r *ModuleRepository) FindAllPublished() ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("status = ?", model.StatusPublished).
		Order("sort_order asc, id asc").
		Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) FindByIDs(ids []uint) ([]model.Module, error) {
	var modules []model.Module
	if len(ids) == 0 {
		return modules, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) Save(m *model.Module) error {
	return r.DB.Save(m).Error
}

func (r *ModuleRepository) UpdatePrerequisites(id uint, prereqIDs []uint) error {
	return r.DB.Model(&model.Module{}).Where("id = ?", id).
		Update("prerequisite_ids", prereqIDs).Error
}
