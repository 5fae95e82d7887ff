package repository

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"course_studio_backend/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("repo_test_%d", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&model.CourseVersion{}, &model.VersionChangelogEntry{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func TestRecordChangeAppendsInOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewCourseVersionRepository(db)

	version := &model.CourseVersion{CourseID: 1, Version: "1.0.0", Title: "T", Status: model.VersionDraft}
	if err := repo.Create(version); err != nil {
		t.Fatalf("create version: %v", err)
	}

	entries := []*model.VersionChangelogEntry{
		{CourseVersionID: version.ID, ChangeType: model.ChangeTypeMinor, Description: "renamed module"},
		{CourseVersionID: version.ID, ChangeType: model.ChangeTypePublish, ChangeCategory: model.ChangeCategoryVersionPublished, Description: "released"},
	}
	for _, e := range entries {
		if err := repo.RecordChange(e); err != nil {
			t.Fatalf("RecordChange: %v", err)
		}
		if e.ID == "" {
			t.Fatal("changelog id not generated on create")
		}
		// created_at 精度有限，保证两条记录可排序
		time.Sleep(2 * time.Millisecond)
	}

	got, err := repo.GetChangelog(version.ID)
	if err != nil {
		t.Fatalf("GetChangelog: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Description != "renamed module" || got[1].Description != "released" {
		t.Errorf("entries out of order: %q, %q", got[0].Description, got[1].Description)
	}

	count, err := repo.CountChangelog(version.ID)
	if err != nil {
		t.Fatalf("CountChangelog: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	other, err := repo.GetChangelog(version.ID + 100)
	if err != nil {
		t.Fatalf("GetChangelog for unknown version: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unknown version returned %d entries", len(other))
	}
}
