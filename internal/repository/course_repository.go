package repository

import (
	"course_studio_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// FindWithContent 加载课程及排序后的模块/活动，快照构建依赖这里的顺序
func (r *CourseRepository) FindWithContent(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("module_order asc")
		}).
		Preload("Modules.Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("activity_order asc")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) ListByCreator(creatorID uint, page, limit int) ([]model.Course, int, error) {
	var courses []model.Course
	var total int64
	query := r.DB.Model(&model.Course{})
	if creatorID > 0 {
		query = query.Where("creator_id = ?", creatorID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, int(total), err
}

// ListUnversioned 返回还没有任何已发布版本的课程（迁移回填的目标集合）
func (r *CourseRepository) ListUnversioned() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("current_version_id IS NULL").Order("id asc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) CreateModule(m *model.Module) error {
	return r.DB.Create(m).Error
}

func (r *CourseRepository) UpdateModule(m *model.Module) error {
	return r.DB.Save(m).Error
}

func (r *CourseRepository) DeleteModule(id uint) error {
	return r.DB.Delete(&model.Module{}, id).Error
}

func (r *CourseRepository) FindModuleByID(id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.First(&m, id).Error
	return &m, err
}

func (r *CourseRepository) CountModules(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Module{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *CourseRepository) CreateActivity(a *model.Activity) error {
	return r.DB.Create(a).Error
}

func (r *CourseRepository) UpdateActivity(a *model.Activity) error {
	return r.DB.Save(a).Error
}

func (r *CourseRepository) DeleteActivity(id uint) error {
	return r.DB.Delete(&model.Activity{}, id).Error
}

func (r *CourseRepository) FindActivityByID(id uint) (*model.Activity, error) {
	var a model.Activity
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *CourseRepository) CountActivities(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Activity{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}
