package model

import (
	"encoding/json"
	"time"
)

type VersionStatus string

const (
	VersionDraft     VersionStatus = "draft"
	VersionPublished VersionStatus = "published"
	VersionArchived  VersionStatus = "archived"
)

// versionTransitions 状态机：draft→published→archived，archived 为终态。
// 新增状态（如定时发布）只需要改这张表。
var versionTransitions = map[VersionStatus][]VersionStatus{
	VersionDraft:     {VersionPublished, VersionArchived},
	VersionPublished: {VersionArchived},
	VersionArchived:  {},
}

func (s VersionStatus) Valid() bool {
	_, ok := versionTransitions[s]
	return ok
}

func (s VersionStatus) CanTransition(to VersionStatus) bool {
	for _, next := range versionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CourseVersion 课程版本快照。除 Status / PublishedAt / PublishedBy 由生命周期
// 管理外，创建之后不可变更。
// swagger:model CourseVersion
type CourseVersion struct {
	BaseModel

	CourseID uint          `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Version  string        `gorm:"size:20;not null" json:"version"`
	Status   VersionStatus `gorm:"size:20;default:'draft';index" json:"status"`

	Title           string          `gorm:"size:255;not null" json:"title"`
	Summary         string          `gorm:"type:text" json:"summary"`
	Syllabus        string          `gorm:"type:text" json:"syllabus"`
	DurationMinutes int             `gorm:"default:0" json:"durationMinutes"`
	SnapshotData    json.RawMessage `gorm:"type:json" json:"snapshotData,omitempty"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedBy   uint       `gorm:"index;type:bigint unsigned" json:"createdBy"`
	PublishedBy uint       `gorm:"type:bigint unsigned" json:"publishedBy"`

	ModuleVersions []ModuleVersion `gorm:"foreignKey:CourseVersionID" json:"moduleVersions,omitempty"`
	ChangelogCount int64           `gorm:"-" json:"changelogCount"`
}

func (CourseVersion) TableName() string {
	return "course_versions"
}

// swagger:model ModuleVersion
type ModuleVersion struct {
	BaseModel

	ModuleID        uint          `gorm:"index;type:bigint unsigned;not null" json:"moduleId"`
	CourseVersionID uint          `gorm:"index;type:bigint unsigned;not null" json:"courseVersionId"`
	Version         string        `gorm:"size:20;not null" json:"version"`
	Status          VersionStatus `gorm:"size:20;default:'draft'" json:"status"`

	Title           string          `gorm:"size:255;not null" json:"title"`
	Content         string          `gorm:"type:text" json:"content"`
	DurationMinutes int             `gorm:"default:0" json:"durationMinutes"`
	ModuleOrder     int             `gorm:"default:0" json:"moduleOrder"`
	SnapshotData    json.RawMessage `gorm:"type:json" json:"snapshotData,omitempty"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	ActivityVersions []ActivityVersion `gorm:"foreignKey:ModuleVersionID" json:"activityVersions,omitempty"`
}

func (ModuleVersion) TableName() string {
	return "module_versions"
}

// swagger:model ActivityVersion
type ActivityVersion struct {
	BaseModel

	ActivityID      uint          `gorm:"index;type:bigint unsigned;not null" json:"activityId"`
	ModuleVersionID uint          `gorm:"index;type:bigint unsigned;not null" json:"moduleVersionId"`
	Version         string        `gorm:"size:20;not null" json:"version"`
	Status          VersionStatus `gorm:"size:20;default:'draft'" json:"status"`

	Title           string          `gorm:"size:255;not null" json:"title"`
	Content         string          `gorm:"type:text" json:"content"`
	ContentURL      string          `gorm:"size:255" json:"contentUrl"`
	ActivityType    string          `gorm:"size:50" json:"activityType"`
	DurationMinutes int             `gorm:"default:0" json:"durationMinutes"`
	ActivityOrder   int             `gorm:"default:0" json:"activityOrder"`
	SnapshotData    json.RawMessage `gorm:"type:json" json:"snapshotData,omitempty"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func (ActivityVersion) TableName() string {
	return "activity_versions"
}
