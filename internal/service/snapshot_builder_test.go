package service

import (
	"encoding/json"
	"errors"
	"testing"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/repository"
	"course_studio_backend/internal/util"
)

func TestBuildSnapshotPreservesOrder(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)

	loaded, err := repository.NewCourseRepository(db).FindWithContent(course.ID)
	if err != nil {
		t.Fatalf("failed to load course: %v", err)
	}

	version, err := BuildSnapshot(loaded, "1.0.0", 7)
	if err != nil {
		t.Fatalf("BuildSnapshot returned error: %v", err)
	}

	if version.Status != model.VersionDraft {
		t.Errorf("new snapshot status = %s, want draft", version.Status)
	}
	if version.Title != "Intro to Go" {
		t.Errorf("snapshot title = %q", version.Title)
	}
	if len(version.ModuleVersions) != 2 {
		t.Fatalf("got %d module versions, want 2", len(version.ModuleVersions))
	}
	if version.ModuleVersions[0].Title != "Basics" || version.ModuleVersions[1].Title != "Concurrency" {
		t.Errorf("modules out of order: %q, %q",
			version.ModuleVersions[0].Title, version.ModuleVersions[1].Title)
	}

	basics := version.ModuleVersions[0]
	if len(basics.ActivityVersions) != 2 {
		t.Fatalf("got %d activity versions in first module, want 2", len(basics.ActivityVersions))
	}
	if basics.ActivityVersions[0].Title != "Hello world" || basics.ActivityVersions[1].Title != "Quiz" {
		t.Errorf("activities out of order: %q, %q",
			basics.ActivityVersions[0].Title, basics.ActivityVersions[1].Title)
	}
	if basics.ActivityVersions[0].ActivityOrder != 1 {
		t.Errorf("activity order not carried into snapshot: %d", basics.ActivityVersions[0].ActivityOrder)
	}
}

func TestBuildSnapshotDataBag(t *testing.T) {
	course := &model.Course{
		CreatorID: 3,
		Title:     "Business English",
		CoverURL:  "https://cdn.example.com/cover.png",
		Category:  model.CourseCategoryLanguage,
		Language:  "en",
	}
	course.ID = 42

	version, err := BuildSnapshot(course, "2.1.0", 3)
	if err != nil {
		t.Fatalf("BuildSnapshot returned error: %v", err)
	}

	var bag map[string]interface{}
	if err := json.Unmarshal(version.SnapshotData, &bag); err != nil {
		t.Fatalf("snapshot data is not valid JSON: %v", err)
	}
	if bag["coverUrl"] != "https://cdn.example.com/cover.png" {
		t.Errorf("coverUrl not captured: %v", bag["coverUrl"])
	}
	if bag["category"] != model.CourseCategoryLanguage {
		t.Errorf("category not captured: %v", bag["category"])
	}
	if bag["creatorId"] != float64(3) {
		t.Errorf("creatorId not captured: %v", bag["creatorId"])
	}
}

func TestBuildSnapshotInvalidSource(t *testing.T) {
	valid := &model.Course{Title: "ok"}
	valid.ID = 1

	cases := []struct {
		name   string
		course *model.Course
		label  string
	}{
		{"nil course", nil, "1.0.0"},
		{"unsaved course", &model.Course{Title: "x"}, "1.0.0"},
		{"missing title", func() *model.Course {
			c := &model.Course{}
			c.ID = 5
			return c
		}(), "1.0.0"},
		{"empty label", valid, ""},
		{"unsaved module", func() *model.Course {
			c := &model.Course{Title: "x", Modules: []model.Module{{Title: "m"}}}
			c.ID = 5
			return c
		}(), "1.0.0"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := BuildSnapshot(c.course, c.label, 1)
			if !errors.Is(err, util.ErrInvalidSourceState) {
				t.Fatalf("got err %v, want ErrInvalidSourceState", err)
			}
		})
	}
}

func TestNextVersionLabel(t *testing.T) {
	cases := []struct {
		current string
		want    string
	}{
		{"", "1.0.0"},
		{"1.0.0", "1.1.0"},
		{"1.9.0", "1.10.0"},
		{"2.3.7", "2.4.0"},
		{"garbage", "1.0.0"},
	}
	for _, c := range cases {
		if got := NextVersionLabel(c.current); got != c.want {
			t.Errorf("NextVersionLabel(%q) = %q, want %q", c.current, got, c.want)
		}
	}
}
