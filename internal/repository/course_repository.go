package repository

import (
	"bcs_edu_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) FindPublishedBySlug(slug string) (*model.Course, error) {
	var c model.Course
	err := r.DB.Where("slug = ? AND status = ?", slug, model.StatusPublished).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAllPublished orders featured courses first, newest after, matching the
// public curriculum catalog.
func (r *CourseRepository) FindAllPublished() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("status = ?", model.StatusPublished).
		Order("featured desc, created_at desc").
		Find(&courses).Error
	return courses, err
}

// PublishedModules returns a course's published modules in course sort order.
func (r *CourseRepository) PublishedModules(courseID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.
		Joins("JOIN course_modules ON course_modules.module_id = modules.id").
		Where("course_modules.course_id = ? AND modules.status = ?", courseID, model.StatusPublished).
		Where("course_modules.deleted_at IS NULL").
		Order("course_modules.sort_order asc").
		Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) ModuleCount(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseModule{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// CourseIDsContainingModule lists every course that includes the module,
// used by auto-linked completion to fan out over the user's enrollments.
func (r *CourseRepository) CourseIDsContainingModule(moduleID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.CourseModule{}).
		Where("module_id = ?", moduleID).
		Pluck("course_id", &ids).Error
	return ids, err
}

func (r *CourseRepository) ContainsModule(courseID, moduleID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CourseModule{}).
		Where("course_id = ? AND module_id = ?", courseID, moduleID).
		Count(&count).Error
	return count > 0, err
}
