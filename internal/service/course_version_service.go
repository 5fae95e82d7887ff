package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/repository"
	"course_studio_backend/internal/util"
	"course_studio_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const currentVersionCacheTTL = 5 * time.Minute

// InvalidTransitionError 携带版本当前状态，控制器用它向前端解释冲突原因
type InvalidTransitionError struct {
	CurrentStatus model.VersionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("version in status %q cannot be published", e.CurrentStatus)
}

func (e *InvalidTransitionError) Unwrap() error {
	return util.ErrInvalidTransition
}

type CourseVersionService struct {
	CourseRepo  *repository.CourseRepository
	VersionRepo *repository.CourseVersionRepository
	DB          *gorm.DB
	Redis       *redis.Client
}

func NewCourseVersionService(courseRepo *repository.CourseRepository, versionRepo *repository.CourseVersionRepository, db *gorm.DB, rdb *redis.Client) *CourseVersionService {
	return &CourseVersionService{
		CourseRepo:  courseRepo,
		VersionRepo: versionRepo,
		DB:          db,
		Redis:       rdb,
	}
}

type PublishRequest struct {
	Changelog string
	ActorID   uint
}

// CreateDraft 对课程当前内容做快照并保存为草稿版本。
// 一个课程同时只允许一份未发布的草稿。
func (s *CourseVersionService) CreateDraft(courseID, actorID uint) (*model.CourseVersion, error) {
	course, err := s.CourseRepo.FindWithContent(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	var version *model.CourseVersion
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// 草稿指针要在锁内重读，并发的两次 CreateDraft 只放行一个
		courseQuery := tx
		if tx.Dialector.Name() == "mysql" {
			courseQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var fresh model.Course
		if err := courseQuery.First(&fresh, courseID).Error; err != nil {
			return err
		}
		if fresh.DraftVersionID != nil {
			return util.ErrDraftAlreadyExists
		}

		label := "1.0.0"
		if fresh.CurrentVersionID != nil {
			label = NextVersionLabel(fresh.Version)
		}

		v, err := BuildSnapshot(course, label, actorID)
		if err != nil {
			return err
		}
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		version = v
		return tx.Model(&model.Course{}).Where("id = ?", courseID).
			Update("draft_version_id", v.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return version, nil
}

// Publish 把草稿版本切换为已发布版本，整个切换在一个事务内完成：
// 归档旧版本、级联更新模块/活动快照状态、更新课程指针、写入变更记录。
// 任何一步失败都会整体回滚，不会留下半发布状态。
func (s *CourseVersionService) Publish(versionID uint, req PublishRequest) (*model.CourseVersion, error) {
	version, err := s.VersionRepo.FindByID(versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	if version.Status != model.VersionDraft {
		return nil, &InvalidTransitionError{CurrentStatus: version.Status}
	}

	now := time.Now()

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// 锁课程行，避免并发发布互相覆盖指针（SQLite 不支持行锁，事务本身串行）
		courseQuery := tx
		if tx.Dialector.Name() == "mysql" {
			courseQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var course model.Course
		if err := courseQuery.First(&course, version.CourseID).Error; err != nil {
			return err
		}

		// 持锁后重读状态，拦截并发发布中落后的一方
		var fresh model.CourseVersion
		if err := tx.First(&fresh, versionID).Error; err != nil {
			return err
		}
		if fresh.Status != model.VersionDraft {
			return &InvalidTransitionError{CurrentStatus: fresh.Status}
		}
		if !fresh.Status.CanTransition(model.VersionPublished) {
			return &InvalidTransitionError{CurrentStatus: fresh.Status}
		}

		// 1. 归档之前已发布的版本，其 published_at 保持不变
		if course.CurrentVersionID != nil && *course.CurrentVersionID != versionID {
			if err := tx.Model(&model.CourseVersion{}).
				Where("id = ?", *course.CurrentVersionID).
				Update("status", model.VersionArchived).Error; err != nil {
				return err
			}
		}

		// 2. 发布目标版本
		if err := tx.Model(&model.CourseVersion{}).Where("id = ?", versionID).
			Updates(map[string]interface{}{
				"status":       model.VersionPublished,
				"published_at": now,
				"published_by": req.ActorID,
			}).Error; err != nil {
			return err
		}

		// 3. 级联发布模块快照
		if err := tx.Model(&model.ModuleVersion{}).
			Where("course_version_id = ?", versionID).
			Updates(map[string]interface{}{
				"status":       model.VersionPublished,
				"published_at": now,
			}).Error; err != nil {
			return err
		}

		// 4. 级联发布活动快照
		var moduleVersionIDs []uint
		if err := tx.Model(&model.ModuleVersion{}).
			Where("course_version_id = ?", versionID).
			Pluck("id", &moduleVersionIDs).Error; err != nil {
			return err
		}
		if len(moduleVersionIDs) > 0 {
			if err := tx.Model(&model.ActivityVersion{}).
				Where("module_version_id IN ?", moduleVersionIDs).
				Updates(map[string]interface{}{
					"status":       model.VersionPublished,
					"published_at": now,
				}).Error; err != nil {
				return err
			}
		}

		// 5. 更新课程指针和展示用版本号
		if err := tx.Model(&model.Course{}).Where("id = ?", course.ID).
			Updates(map[string]interface{}{
				"current_version_id": versionID,
				"draft_version_id":   nil,
				"version":            fresh.Version,
			}).Error; err != nil {
			return err
		}

		// 6. 写入变更记录
		description := req.Changelog
		if description == "" {
			description = fmt.Sprintf("Version %s published", fresh.Version)
		}
		entry := &model.VersionChangelogEntry{
			CourseVersionID: versionID,
			ChangeType:      model.ChangeTypePublish,
			ChangeCategory:  model.ChangeCategoryVersionPublished,
			Description:     description,
			EntityType:      model.ChangelogEntityCourse,
			EntityID:        course.ID,
			CreatedBy:       req.ActorID,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.VersionPublishCounter.Inc()

	return s.GetVersion(versionID)
}

// GetVersion 返回版本聚合（含模块/活动快照与变更记录数）
func (s *CourseVersionService) GetVersion(versionID uint) (*model.CourseVersion, error) {
	version, err := s.VersionRepo.FindWithTree(versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	count, err := s.VersionRepo.CountChangelog(versionID)
	if err != nil {
		return nil, err
	}
	version.ChangelogCount = count
	return version, nil
}

func (s *CourseVersionService) ListVersions(courseID uint) ([]model.CourseVersion, error) {
	return s.VersionRepo.ListByCourse(courseID)
}

func (s *CourseVersionService) GetChangelog(versionID uint) ([]model.VersionChangelogEntry, error) {
	if _, err := s.VersionRepo.FindByID(versionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	return s.VersionRepo.GetChangelog(versionID)
}

// GetCurrentVersion 读取课程当前已发布的版本。
// 缓存键是版本 ID 而不是课程 ID：发布后的聚合不可变，过期的 Set 只会写到旧版本
// 自己的键下，新读者查的是新键，发布时不需要失效操作。
func (s *CourseVersionService) GetCurrentVersion(ctx context.Context, courseID uint) (*model.CourseVersion, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if course.CurrentVersionID == nil {
		return nil, util.ErrVersionNotFound
	}

	key := versionCacheKey(*course.CurrentVersionID)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var v model.CourseVersion
			if err := json.Unmarshal([]byte(cached), &v); err == nil {
				return &v, nil
			}
		}
	}

	version, err := s.GetVersion(*course.CurrentVersionID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(version); err == nil {
			s.Redis.Set(ctx, key, data, currentVersionCacheTTL)
		}
	}
	return version, nil
}

func versionCacheKey(versionID uint) string {
	return fmt.Sprintf("course_version:%d", versionID)
}
