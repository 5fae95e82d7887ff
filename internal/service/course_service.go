package service

import (
	"encoding/json"
	"errors"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/repository"
	"course_studio_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
	DB         *gorm.DB
}

func NewCourseService(courseRepo *repository.CourseRepository, db *gorm.DB) *CourseService {
	return &CourseService{CourseRepo: courseRepo, DB: db}
}

type ActivityRequest struct {
	Title           string `json:"title" binding:"required"`
	Content         string `json:"content"`
	ContentURL      string `json:"contentUrl"`
	ActivityType    string `json:"activityType"`
	DurationMinutes int    `json:"durationMinutes"`
}

type ModuleRequest struct {
	Title           string            `json:"title" binding:"required"`
	Content         string            `json:"content"`
	DurationMinutes int               `json:"durationMinutes"`
	Activities      []ActivityRequest `json:"activities"`
}

type CourseCreateRequest struct {
	Title           string          `json:"title" binding:"required"`
	Summary         string          `json:"summary"`
	Syllabus        string          `json:"syllabus"`
	CoverURL        string          `json:"coverUrl"`
	Category        string          `json:"category"`
	Language        string          `json:"language"`
	Tags            json.RawMessage `json:"tags"`
	DurationMinutes int             `json:"durationMinutes"`
	Modules         []ModuleRequest `json:"modules"`
}

// CreateCourse 课程、模块、活动在同一事务内创建，顺序号按请求里的排列赋值
func (s *CourseService) CreateCourse(creatorID uint, req CourseCreateRequest) (*model.Course, error) {
	if req.Title == "" {
		return nil, errors.New("title required")
	}

	var created *model.Course
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		course := &model.Course{
			CreatorID:       creatorID,
			Title:           req.Title,
			Summary:         req.Summary,
			Syllabus:        req.Syllabus,
			CoverURL:        req.CoverURL,
			Category:        req.Category,
			Language:        req.Language,
			Tags:            req.Tags,
			DurationMinutes: req.DurationMinutes,
		}
		if err := tx.Create(course).Error; err != nil {
			return err
		}

		for mi, mreq := range req.Modules {
			m := &model.Module{
				CourseID:        course.ID,
				Title:           mreq.Title,
				Content:         mreq.Content,
				DurationMinutes: mreq.DurationMinutes,
				ModuleOrder:     mi + 1,
			}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			for ai, areq := range mreq.Activities {
				a := &model.Activity{
					ModuleID:        m.ID,
					Title:           areq.Title,
					Content:         areq.Content,
					ContentURL:      areq.ContentURL,
					ActivityType:    areq.ActivityType,
					DurationMinutes: areq.DurationMinutes,
					ActivityOrder:   ai + 1,
				}
				if err := tx.Create(a).Error; err != nil {
					return err
				}
			}
		}

		created = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.CourseRepo.FindWithContent(created.ID)
}

type CourseUpdateRequest struct {
	Title           string          `json:"title"`
	Summary         string          `json:"summary"`
	Syllabus        string          `json:"syllabus"`
	CoverURL        string          `json:"coverUrl"`
	Category        string          `json:"category"`
	Language        string          `json:"language"`
	Tags            json.RawMessage `json:"tags"`
	DurationMinutes int             `json:"durationMinutes"`
}

func (s *CourseService) UpdateCourse(courseID uint, req CourseUpdateRequest) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if req.Title != "" {
		course.Title = req.Title
	}
	course.Summary = req.Summary
	course.Syllabus = req.Syllabus
	course.CoverURL = req.CoverURL
	course.Category = req.Category
	if req.Language != "" {
		course.Language = req.Language
	}
	course.Tags = req.Tags
	course.DurationMinutes = req.DurationMinutes

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(courseID uint) error {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	return s.CourseRepo.Delete(courseID)
}

func (s *CourseService) AddModule(courseID uint, req ModuleRequest) (*model.Module, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	count, err := s.CourseRepo.CountModules(courseID)
	if err != nil {
		return nil, err
	}

	m := &model.Module{
		CourseID:        courseID,
		Title:           req.Title,
		Content:         req.Content,
		DurationMinutes: req.DurationMinutes,
		ModuleOrder:     int(count) + 1,
	}
	if err := s.CourseRepo.CreateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CourseService) UpdateModule(moduleID uint, req ModuleRequest) (*model.Module, error) {
	m, err := s.CourseRepo.FindModuleByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	m.Title = req.Title
	m.Content = req.Content
	m.DurationMinutes = req.DurationMinutes
	if err := s.CourseRepo.UpdateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CourseService) DeleteModule(moduleID uint) error {
	m, err := s.CourseRepo.FindModuleByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", m.ID).Delete(&model.Activity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Module{}, m.ID).Error
	})
}

// ReorderModules 按给定 id 顺序重排模块，顺序是会被快照的字段
func (s *CourseService) ReorderModules(courseID uint, orderedIDs []uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			res := tx.Model(&model.Module{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("module_order", idx+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return util.ErrModuleNotFound
			}
		}
		return nil
	})
}

func (s *CourseService) AddActivity(moduleID uint, req ActivityRequest) (*model.Activity, error) {
	if _, err := s.CourseRepo.FindModuleByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	count, err := s.CourseRepo.CountActivities(moduleID)
	if err != nil {
		return nil, err
	}

	a := &model.Activity{
		ModuleID:        moduleID,
		Title:           req.Title,
		Content:         req.Content,
		ContentURL:      req.ContentURL,
		ActivityType:    req.ActivityType,
		DurationMinutes: req.DurationMinutes,
		ActivityOrder:   int(count) + 1,
	}
	if err := s.CourseRepo.CreateActivity(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CourseService) UpdateActivity(activityID uint, req ActivityRequest) (*model.Activity, error) {
	a, err := s.CourseRepo.FindActivityByID(activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrActivityNotFound
		}
		return nil, err
	}
	a.Title = req.Title
	a.Content = req.Content
	a.ContentURL = req.ContentURL
	a.ActivityType = req.ActivityType
	a.DurationMinutes = req.DurationMinutes
	if err := s.CourseRepo.UpdateActivity(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CourseService) DeleteActivity(activityID uint) error {
	if _, err := s.CourseRepo.FindActivityByID(activityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrActivityNotFound
		}
		return err
	}
	return s.CourseRepo.DeleteActivity(activityID)
}

func (s *CourseService) ReorderActivities(moduleID uint, orderedIDs []uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			res := tx.Model(&model.Activity{}).
				Where("id = ? AND module_id = ?", id, moduleID).
				Update("activity_order", idx+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return util.ErrActivityNotFound
			}
		}
		return nil
	})
}
