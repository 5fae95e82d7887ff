package service

import (
	"errors"
	"testing"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/repository"
	"course_studio_backend/internal/util"

	"gorm.io/gorm"
)

func newTestCourseService(t *testing.T) (*CourseService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewCourseService(repository.NewCourseRepository(db), db), db
}

func TestCreateCourseWithNestedContent(t *testing.T) {
	svc, _ := newTestCourseService(t)

	course, err := svc.CreateCourse(5, CourseCreateRequest{
		Title:    "Web Development",
		Category: model.CourseCategoryProgramming,
		Modules: []ModuleRequest{
			{Title: "HTML", Activities: []ActivityRequest{
				{Title: "Tags", ActivityType: model.ActivityTypeReading},
				{Title: "Forms quiz", ActivityType: model.ActivityTypeQuiz},
			}},
			{Title: "CSS"},
		},
	})
	if err != nil {
		t.Fatalf("CreateCourse returned error: %v", err)
	}

	if course.CreatorID != 5 {
		t.Errorf("creator = %d, want 5", course.CreatorID)
	}
	if len(course.Modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(course.Modules))
	}
	if course.Modules[0].ModuleOrder != 1 || course.Modules[1].ModuleOrder != 2 {
		t.Errorf("module orders = %d, %d", course.Modules[0].ModuleOrder, course.Modules[1].ModuleOrder)
	}
	if len(course.Modules[0].Activities) != 2 {
		t.Fatalf("got %d activities, want 2", len(course.Modules[0].Activities))
	}
	if course.Modules[0].Activities[1].ActivityOrder != 2 {
		t.Errorf("activity order = %d, want 2", course.Modules[0].Activities[1].ActivityOrder)
	}
	if course.CurrentVersionID != nil || course.DraftVersionID != nil {
		t.Error("new course must start without version pointers")
	}
}

func TestReorderModules(t *testing.T) {
	svc, db := newTestCourseService(t)
	course := seedCourse(t, db)

	loaded, err := repository.NewCourseRepository(db).FindWithContent(course.ID)
	if err != nil {
		t.Fatalf("load course: %v", err)
	}
	// 颠倒现有顺序
	reversed := []uint{loaded.Modules[1].ID, loaded.Modules[0].ID}
	if err := svc.ReorderModules(course.ID, reversed); err != nil {
		t.Fatalf("ReorderModules: %v", err)
	}

	reloaded, err := repository.NewCourseRepository(db).FindWithContent(course.ID)
	if err != nil {
		t.Fatalf("reload course: %v", err)
	}
	if reloaded.Modules[0].ID != reversed[0] {
		t.Errorf("first module after reorder = %d, want %d", reloaded.Modules[0].ID, reversed[0])
	}

	// 重排会体现在下一次快照里
	version, err := BuildSnapshot(reloaded, "1.0.0", 7)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if version.ModuleVersions[0].ModuleID != reversed[0] {
		t.Errorf("snapshot first module = %d, want %d", version.ModuleVersions[0].ModuleID, reversed[0])
	}
}

func TestReorderModulesRejectsForeignModule(t *testing.T) {
	svc, db := newTestCourseService(t)
	course := seedCourse(t, db)
	other := seedCourse(t, db)

	otherLoaded, err := repository.NewCourseRepository(db).FindWithContent(other.ID)
	if err != nil {
		t.Fatalf("load other course: %v", err)
	}

	err = svc.ReorderModules(course.ID, []uint{otherLoaded.Modules[0].ID})
	if !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("got err %v, want ErrModuleNotFound", err)
	}
}

func TestDeleteModuleRemovesActivities(t *testing.T) {
	svc, db := newTestCourseService(t)
	course := seedCourse(t, db)

	loaded, err := repository.NewCourseRepository(db).FindWithContent(course.ID)
	if err != nil {
		t.Fatalf("load course: %v", err)
	}
	target := loaded.Modules[0]
	if len(target.Activities) == 0 {
		t.Fatal("seed module has no activities")
	}

	if err := svc.DeleteModule(target.ID); err != nil {
		t.Fatalf("DeleteModule: %v", err)
	}

	var count int64
	if err := db.Model(&model.Activity{}).Where("module_id = ?", target.ID).Count(&count).Error; err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if count != 0 {
		t.Errorf("%d activities left after module delete", count)
	}
}
