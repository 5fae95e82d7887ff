package service

import (
	"time"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/repository"
	"course_studio_backend/pkg/logger"
	"course_studio_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VersionBackfillService 给引擎上线前创建的老课程补建第一个已发布版本。
// 只处理 current_version_id 为空的课程，重复执行对已迁移课程无影响。
type VersionBackfillService struct {
	CourseRepo  *repository.CourseRepository
	VersionRepo *repository.CourseVersionRepository
	DB          *gorm.DB
}

func NewVersionBackfillService(courseRepo *repository.CourseRepository, versionRepo *repository.CourseVersionRepository, db *gorm.DB) *VersionBackfillService {
	return &VersionBackfillService{
		CourseRepo:  courseRepo,
		VersionRepo: versionRepo,
		DB:          db,
	}
}

type BackfillError struct {
	CourseID uint   `json:"courseId"`
	Error    string `json:"error"`
}

type BackfillResult struct {
	SuccessCount int             `json:"successCount"`
	ErrorCount   int             `json:"errorCount"`
	Errors       []BackfillError `json:"errors,omitempty"`
}

// BackfillAll 单个课程失败只计数不中断，批次可以随时中断后重跑
func (s *VersionBackfillService) BackfillAll() (*BackfillResult, error) {
	courses, err := s.CourseRepo.ListUnversioned()
	if err != nil {
		return nil, err
	}

	result := &BackfillResult{}
	for _, course := range courses {
		if err := s.backfillCourse(course.ID); err != nil {
			logger.Log.Error("version backfill failed for course",
				zap.Uint("courseId", course.ID), zap.Error(err))
			monitoring.VersionBackfillCounter.WithLabelValues("error").Inc()
			result.ErrorCount++
			result.Errors = append(result.Errors, BackfillError{CourseID: course.ID, Error: err.Error()})
			continue
		}
		logger.Log.Info("version backfill done for course", zap.Uint("courseId", course.ID))
		monitoring.VersionBackfillCounter.WithLabelValues("success").Inc()
		result.SuccessCount++
	}
	return result, nil
}

// backfillCourse 单个课程的版本创建是原子的：版本树、课程指针、变更记录同事务提交
func (s *VersionBackfillService) backfillCourse(courseID uint) error {
	course, err := s.CourseRepo.FindWithContent(courseID)
	if err != nil {
		return err
	}

	label := course.Version
	if label == "" {
		label = "1.0.0"
	}

	version, err := BuildSnapshot(course, label, course.CreatorID)
	if err != nil {
		return err
	}

	// 迁移产生的版本直接以 published 状态落库
	now := time.Now()
	version.Status = model.VersionPublished
	version.PublishedAt = &now
	for i := range version.ModuleVersions {
		version.ModuleVersions[i].Status = model.VersionPublished
		version.ModuleVersions[i].PublishedAt = &now
		for j := range version.ModuleVersions[i].ActivityVersions {
			version.ModuleVersions[i].ActivityVersions[j].Status = model.VersionPublished
			version.ModuleVersions[i].ActivityVersions[j].PublishedAt = &now
		}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(version).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Course{}).Where("id = ?", course.ID).
			Updates(map[string]interface{}{
				"current_version_id": version.ID,
				"version":            label,
			}).Error; err != nil {
			return err
		}

		entry := &model.VersionChangelogEntry{
			CourseVersionID: version.ID,
			ChangeType:      model.ChangeTypeMajor,
			ChangeCategory:  model.ChangeCategoryMigration,
			Description:     "Initial version created during migration",
			EntityType:      model.ChangelogEntityCourse,
			EntityID:        course.ID,
		}
		return tx.Create(entry).Error
	})
}
