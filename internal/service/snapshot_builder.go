package service

import (
	"encoding/json"
	"fmt"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/util"
)

// courseSnapshotBag 次级字段统一进 snapshot_data，新增展示字段不需要改版本表结构。
// 列表/筛选会用到的字段仍然是版本表的一级列。
type courseSnapshotBag struct {
	CoverURL  string          `json:"coverUrl,omitempty"`
	Category  string          `json:"category,omitempty"`
	Language  string          `json:"language,omitempty"`
	Tags      json.RawMessage `json:"tags,omitempty"`
	CreatorID uint            `json:"creatorId,omitempty"`
}

// BuildSnapshot 把一个完整加载的课程聚合转成内存中的版本记录树，不落库、无副作用。
// course.Modules 必须已按 module_order 排序，Activities 已按 activity_order 排序，
// 快照原样保留该顺序（顺序本身也是被版本化的字段）。
func BuildSnapshot(course *model.Course, label string, createdBy uint) (*model.CourseVersion, error) {
	if course == nil || course.ID == 0 {
		return nil, fmt.Errorf("%w: course id is empty", util.ErrInvalidSourceState)
	}
	if course.Title == "" {
		return nil, fmt.Errorf("%w: course %d has no title", util.ErrInvalidSourceState, course.ID)
	}
	if label == "" {
		return nil, fmt.Errorf("%w: version label is empty", util.ErrInvalidSourceState)
	}

	bag, err := json.Marshal(courseSnapshotBag{
		CoverURL:  course.CoverURL,
		Category:  course.Category,
		Language:  course.Language,
		Tags:      course.Tags,
		CreatorID: course.CreatorID,
	})
	if err != nil {
		return nil, err
	}

	version := &model.CourseVersion{
		CourseID:        course.ID,
		Version:         label,
		Status:          model.VersionDraft,
		Title:           course.Title,
		Summary:         course.Summary,
		Syllabus:        course.Syllabus,
		DurationMinutes: course.DurationMinutes,
		SnapshotData:    bag,
		CreatedBy:       createdBy,
	}

	for _, m := range course.Modules {
		if m.ID == 0 {
			return nil, fmt.Errorf("%w: course %d contains an unsaved module", util.ErrInvalidSourceState, course.ID)
		}
		mv := model.ModuleVersion{
			ModuleID:        m.ID,
			Version:         label,
			Status:          model.VersionDraft,
			Title:           m.Title,
			Content:         m.Content,
			DurationMinutes: m.DurationMinutes,
			ModuleOrder:     m.ModuleOrder,
		}
		for _, a := range m.Activities {
			if a.ID == 0 {
				return nil, fmt.Errorf("%w: module %d contains an unsaved activity", util.ErrInvalidSourceState, m.ID)
			}
			mv.ActivityVersions = append(mv.ActivityVersions, model.ActivityVersion{
				ActivityID:      a.ID,
				Version:         label,
				Status:          model.VersionDraft,
				Title:           a.Title,
				Content:         a.Content,
				ContentURL:      a.ContentURL,
				ActivityType:    a.ActivityType,
				DurationMinutes: a.DurationMinutes,
				ActivityOrder:   a.ActivityOrder,
			})
		}
		version.ModuleVersions = append(version.ModuleVersions, mv)
	}

	return version, nil
}

// NextVersionLabel 在现有版本号基础上递增次版本号，没有历史版本时从 1.0.0 开始
func NextVersionLabel(current string) string {
	if current == "" {
		return "1.0.0"
	}
	var major, minor, patch int
	if _, err := fmt.Sscanf(current, "%d.%d.%d", &major, &minor, &patch); err != nil {
		return "1.0.0"
	}
	return fmt.Sprintf("%d.%d.0", major, minor+1)
}
