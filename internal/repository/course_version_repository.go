package repository

import (
	"course_studio_backend/internal/model"

	"gorm.io/gorm"
)

type CourseVersionRepository struct {
	DB *gorm.DB
}

func NewCourseVersionRepository(db *gorm.DB) *CourseVersionRepository {
	return &CourseVersionRepository{DB: db}
}

func (r *CourseVersionRepository) Create(version *model.CourseVersion) error {
	return r.DB.Create(version).Error
}

func (r *CourseVersionRepository) FindByID(id uint) (*model.CourseVersion, error) {
	var v model.CourseVersion
	err := r.DB.First(&v, id).Error
	return &v, err
}

// FindWithTree 加载版本及全部下级模块/活动快照，保持快照时的顺序
func (r *CourseVersionRepository) FindWithTree(id uint) (*model.CourseVersion, error) {
	var v model.CourseVersion
	err := r.DB.
		Preload("ModuleVersions", func(db *gorm.DB) *gorm.DB {
			return db.Order("module_order asc")
		}).
		Preload("ModuleVersions.ActivityVersions", func(db *gorm.DB) *gorm.DB {
			return db.Order("activity_order asc")
		}).
		First(&v, id).Error
	return &v, err
}

func (r *CourseVersionRepository) ListByCourse(courseID uint) ([]model.CourseVersion, error) {
	var versions []model.CourseVersion
	err := r.DB.Where("course_id = ?", courseID).Order("created_at desc").Find(&versions).Error
	return versions, err
}

// RecordChange 追加一条变更记录，历史记录不提供修改和删除
func (r *CourseVersionRepository) RecordChange(entry *model.VersionChangelogEntry) error {
	return r.DB.Create(entry).Error
}

func (r *CourseVersionRepository) GetChangelog(courseVersionID uint) ([]model.VersionChangelogEntry, error) {
	var entries []model.VersionChangelogEntry
	err := r.DB.Where("course_version_id = ?", courseVersionID).
		Order("created_at asc").Find(&entries).Error
	return entries, err
}

func (r *CourseVersionRepository) CountChangelog(courseVersionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.VersionChangelogEntry{}).
		Where("course_version_id = ?", courseVersionID).Count(&count).Error
	return count, err
}
