package service

import (
	"testing"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/repository"

	"gorm.io/gorm"
)

func newTestBackfillService(t *testing.T) (*VersionBackfillService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	courseRepo := repository.NewCourseRepository(db)
	versionRepo := repository.NewCourseVersionRepository(db)
	return NewVersionBackfillService(courseRepo, versionRepo, db), db
}

func TestBackfillCreatesPublishedVersion(t *testing.T) {
	svc, db := newTestBackfillService(t)
	course := seedCourse(t, db)

	result, err := svc.BackfillAll()
	if err != nil {
		t.Fatalf("BackfillAll returned error: %v", err)
	}
	if result.SuccessCount != 1 || result.ErrorCount != 0 {
		t.Fatalf("result = %+v, want 1 success", result)
	}

	var reloaded model.Course
	if err := db.First(&reloaded, course.ID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	if reloaded.CurrentVersionID == nil {
		t.Fatal("current pointer not set by backfill")
	}
	if reloaded.Version != "1.0.0" {
		t.Errorf("course display version = %q, want 1.0.0", reloaded.Version)
	}

	version, err := repository.NewCourseVersionRepository(db).FindWithTree(*reloaded.CurrentVersionID)
	if err != nil {
		t.Fatalf("failed to load backfilled version: %v", err)
	}
	if version.Status != model.VersionPublished {
		t.Errorf("backfilled status = %s, want published", version.Status)
	}
	if version.PublishedAt == nil {
		t.Error("backfilled version has no publishedAt")
	}
	if len(version.ModuleVersions) != 2 {
		t.Fatalf("got %d module versions, want 2", len(version.ModuleVersions))
	}
	for _, mv := range version.ModuleVersions {
		if mv.Status != model.VersionPublished {
			t.Errorf("module version %q status = %s", mv.Title, mv.Status)
		}
	}

	entries, err := repository.NewCourseVersionRepository(db).GetChangelog(version.ID)
	if err != nil {
		t.Fatalf("GetChangelog: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d changelog entries, want 1", len(entries))
	}
	if entries[0].ChangeCategory != model.ChangeCategoryMigration {
		t.Errorf("changelog category = %q, want migration", entries[0].ChangeCategory)
	}
}

func TestBackfillIsIdempotent(t *testing.T) {
	svc, db := newTestBackfillService(t)
	course := seedCourse(t, db)

	if _, err := svc.BackfillAll(); err != nil {
		t.Fatalf("first BackfillAll: %v", err)
	}

	var reloaded model.Course
	if err := db.First(&reloaded, course.ID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	firstVersionID := *reloaded.CurrentVersionID

	result, err := svc.BackfillAll()
	if err != nil {
		t.Fatalf("second BackfillAll: %v", err)
	}
	if result.SuccessCount != 0 || result.ErrorCount != 0 {
		t.Errorf("second run result = %+v, want no work", result)
	}

	var count int64
	if err := db.Model(&model.CourseVersion{}).Where("course_id = ?", course.ID).Count(&count).Error; err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d versions after rerun, want 1", count)
	}

	if err := db.First(&reloaded, course.ID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	if *reloaded.CurrentVersionID != firstVersionID {
		t.Error("rerun moved the current pointer")
	}
}

func TestBackfillEmptyModules(t *testing.T) {
	svc, db := newTestBackfillService(t)

	course := &model.Course{CreatorID: 1, Title: "Placeholder course"}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	// 只有模块没有活动
	module := &model.Module{CourseID: course.ID, Title: "Outline", ModuleOrder: 1}
	if err := db.Create(module).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}

	result, err := svc.BackfillAll()
	if err != nil {
		t.Fatalf("BackfillAll: %v", err)
	}
	if result.SuccessCount != 1 {
		t.Fatalf("result = %+v, want 1 success", result)
	}

	var reloaded model.Course
	if err := db.First(&reloaded, course.ID).Error; err != nil {
		t.Fatalf("reload course: %v", err)
	}
	version, err := repository.NewCourseVersionRepository(db).FindWithTree(*reloaded.CurrentVersionID)
	if err != nil {
		t.Fatalf("load version: %v", err)
	}
	if len(version.ModuleVersions) != 1 {
		t.Fatalf("got %d module versions, want 1", len(version.ModuleVersions))
	}
	if len(version.ModuleVersions[0].ActivityVersions) != 0 {
		t.Errorf("empty module grew %d activities", len(version.ModuleVersions[0].ActivityVersions))
	}
}

func TestBackfillIsolatesFailures(t *testing.T) {
	svc, db := newTestBackfillService(t)

	// 无标题的课程无法构建快照
	broken := &model.Course{CreatorID: 1}
	if err := db.Create(broken).Error; err != nil {
		t.Fatalf("seed broken course: %v", err)
	}
	healthy := seedCourse(t, db)

	result, err := svc.BackfillAll()
	if err != nil {
		t.Fatalf("BackfillAll: %v", err)
	}
	if result.SuccessCount != 1 {
		t.Errorf("success count = %d, want 1", result.SuccessCount)
	}
	if result.ErrorCount != 1 {
		t.Errorf("error count = %d, want 1", result.ErrorCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].CourseID != broken.ID {
		t.Errorf("errors = %+v, want entry for course %d", result.Errors, broken.ID)
	}

	var healthyReloaded model.Course
	if err := db.First(&healthyReloaded, healthy.ID).Error; err != nil {
		t.Fatalf("reload healthy course: %v", err)
	}
	if healthyReloaded.CurrentVersionID == nil {
		t.Error("healthy course not backfilled")
	}

	// 已填充主键的结构体不能复用，gorm 会把旧主键拼进查询条件
	var brokenReloaded model.Course
	if err := db.First(&brokenReloaded, broken.ID).Error; err != nil {
		t.Fatalf("reload broken course: %v", err)
	}
	if brokenReloaded.CurrentVersionID != nil {
		t.Error("broken course should stay unversioned")
	}
}
