package model

import (
	"encoding/json"
)

const (
	CourseCategoryProgramming = "programming"
	CourseCategoryLanguage    = "language"
	CourseCategoryBusiness    = "business"
)

// Course 可编辑的课程主体。CurrentVersionID / DraftVersionID 指向版本快照，
// Version 冗余存储当前版本号便于列表展示。
// swagger:model Course
type Course struct {
	BaseModel

	CreatorID       uint            `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title           string          `gorm:"size:255;not null" json:"title"`
	Summary         string          `gorm:"type:text" json:"summary"`
	Syllabus        string          `gorm:"type:text" json:"syllabus"`
	CoverURL        string          `gorm:"size:255" json:"coverUrl"`
	Category        string          `gorm:"size:100" json:"category"`
	Language        string          `gorm:"size:10;default:'en'" json:"language"`
	Tags            json.RawMessage `gorm:"type:json" json:"tags"`
	DurationMinutes int             `gorm:"default:0" json:"durationMinutes"`

	Version          string `gorm:"size:20" json:"version"`
	CurrentVersionID *uint  `gorm:"index;type:bigint unsigned" json:"currentVersionId"`
	DraftVersionID   *uint  `gorm:"index;type:bigint unsigned" json:"draftVersionId"`

	Modules []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Module
type Module struct {
	BaseModel

	CourseID        uint   `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Content         string `gorm:"type:text" json:"content"`
	DurationMinutes int    `gorm:"default:0" json:"durationMinutes"`
	ModuleOrder     int    `gorm:"default:0" json:"moduleOrder"`

	Activities []Activity `gorm:"foreignKey:ModuleID" json:"activities,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

const (
	ActivityTypeVideo      = "video"
	ActivityTypeReading    = "reading"
	ActivityTypeQuiz       = "quiz"
	ActivityTypeAssignment = "assignment"
)

// swagger:model Activity
type Activity struct {
	BaseModel

	ModuleID        uint   `gorm:"index;type:bigint unsigned;not null" json:"moduleId"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Content         string `gorm:"type:text" json:"content"`
	ContentURL      string `gorm:"size:255" json:"contentUrl"`
	ActivityType    string `gorm:"size:50;default:'reading'" json:"activityType"`
	DurationMinutes int    `gorm:"default:0" json:"durationMinutes"`
	ActivityOrder   int    `gorm:"default:0" json:"activityOrder"`
}

func (Activity) TableName() string {
	return "activities"
}
