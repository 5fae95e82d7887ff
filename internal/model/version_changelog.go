package model

// changeType / changeCategory 为开放枚举，引擎只存储不校验，
// 以下常量覆盖引擎自身写入的取值。
const (
	ChangeTypePublish = "publish"
	ChangeTypeMajor   = "major"
	ChangeTypeMinor   = "minor"

	ChangeCategoryVersionPublished = "version_published"
	ChangeCategoryMigration        = "migration"

	ChangelogEntityCourse   = "course"
	ChangelogEntityModule   = "module"
	ChangelogEntityActivity = "activity"
)

// VersionChangelogEntry 版本变更记录，只追加不修改。
// swagger:model VersionChangelogEntry
type VersionChangelogEntry struct {
	UUIDBase

	CourseVersionID uint   `gorm:"index;type:bigint unsigned;not null" json:"courseVersionId"`
	ChangeType      string `gorm:"size:50;not null" json:"changeType"`
	ChangeCategory  string `gorm:"size:50" json:"changeCategory"`
	Description     string `gorm:"type:text" json:"description"`
	EntityType      string `gorm:"size:20" json:"entityType"`
	EntityID        uint   `gorm:"type:bigint unsigned" json:"entityId"`
	CreatedBy       uint   `gorm:"type:bigint unsigned" json:"createdBy"`
}

func (VersionChangelogEntry) TableName() string {
	return "version_changelog_entries"
}
