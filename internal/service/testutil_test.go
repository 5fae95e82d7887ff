package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// openTestDB 每个测试用独立的内存库，互不干扰
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("test_%d", atomic.AddInt64(&testDBSeq, 1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = db.AutoMigrate(
		&model.Course{},
		&model.Module{},
		&model.Activity{},
		&model.CourseVersion{},
		&model.ModuleVersion{},
		&model.ActivityVersion{},
		&model.VersionChangelogEntry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return db
}

func newTestVersionService(t *testing.T) (*CourseVersionService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	courseRepo := repository.NewCourseRepository(db)
	versionRepo := repository.NewCourseVersionRepository(db)
	return NewCourseVersionService(courseRepo, versionRepo, db, nil), db
}

// seedCourse 建一门两个模块的课程，模块和活动的顺序故意与插入顺序不同，
// 用来验证快照按 order 字段而不是主键排序。
func seedCourse(t *testing.T, db *gorm.DB) *model.Course {
	t.Helper()

	course := &model.Course{
		CreatorID: 7,
		Title:     "Intro to Go",
		Summary:   "A first course on Go",
		Category:  model.CourseCategoryProgramming,
		Language:  "en",
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}

	m2 := &model.Module{CourseID: course.ID, Title: "Concurrency", ModuleOrder: 2}
	m1 := &model.Module{CourseID: course.ID, Title: "Basics", ModuleOrder: 1}
	for _, m := range []*model.Module{m2, m1} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("failed to seed module: %v", err)
		}
	}

	activities := []*model.Activity{
		{ModuleID: m1.ID, Title: "Quiz", ActivityType: model.ActivityTypeQuiz, ActivityOrder: 2},
		{ModuleID: m1.ID, Title: "Hello world", ActivityType: model.ActivityTypeReading, ActivityOrder: 1},
		{ModuleID: m2.ID, Title: "Goroutines", ActivityType: model.ActivityTypeVideo, ActivityOrder: 1, DurationMinutes: 12},
	}
	for _, a := range activities {
		if err := db.Create(a).Error; err != nil {
			t.Fatalf("failed to seed activity: %v", err)
		}
	}

	return course
}
