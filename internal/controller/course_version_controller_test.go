package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"course_studio_backend/internal/model"
	"course_studio_backend/internal/repository"
	"course_studio_backend/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func setupVersionRouter(t *testing.T) (*gin.Engine, *service.CourseVersionService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := fmt.Sprintf("ctrl_test_%d", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
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

	svc := service.NewCourseVersionService(
		repository.NewCourseRepository(db),
		repository.NewCourseVersionRepository(db),
		db, nil)

	router := gin.New()
	router.POST("/api/teacher/course-versions/publish", NewCourseVersionController(svc).PublishVersion)
	return router, svc, db
}

func seedDraftVersion(t *testing.T, svc *service.CourseVersionService, db *gorm.DB) *model.CourseVersion {
	t.Helper()

	course := &model.Course{CreatorID: 7, Title: "Intro to Go"}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	module := &model.Module{CourseID: course.ID, Title: "Basics", ModuleOrder: 1}
	if err := db.Create(module).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}

	draft, err := svc.CreateDraft(course.ID, 7)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return draft
}

func postPublish(t *testing.T, router *gin.Engine, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/teacher/course-versions/publish", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, parsed
}

func TestPublishEndpointRequiresVersionID(t *testing.T) {
	router, _, _ := setupVersionRouter(t)

	rec, body := postPublish(t, router, gin.H{"changelog": "no id"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "versionId is required" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestPublishEndpointUnknownVersion(t *testing.T) {
	router, _, _ := setupVersionRouter(t)

	rec, body := postPublish(t, router, gin.H{"versionId": 9999})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body["error"] != "course version not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestPublishEndpointRejectsNonDraft(t *testing.T) {
	router, svc, db := setupVersionRouter(t)
	draft := seedDraftVersion(t, svc, db)

	rec, _ := postPublish(t, router, gin.H{"versionId": draft.ID, "userId": "7"})
	if rec.Code != http.StatusOK {
		t.Fatalf("first publish status = %d, want 200", rec.Code)
	}

	rec, body := postPublish(t, router, gin.H{"versionId": draft.ID, "userId": "7"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second publish status = %d, want 400", rec.Code)
	}
	if body["error"] != "only draft versions can be published" {
		t.Errorf("error = %v", body["error"])
	}
	if body["currentStatus"] != "published" {
		t.Errorf("currentStatus = %v, want published", body["currentStatus"])
	}
}

func TestPublishEndpointSuccessShape(t *testing.T) {
	router, svc, db := setupVersionRouter(t)
	draft := seedDraftVersion(t, svc, db)

	rec, body := postPublish(t, router, gin.H{
		"versionId": draft.ID,
		"changelog": "first release",
		"userId":    "7",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Error("message is empty")
	}

	version, ok := body["version"].(map[string]interface{})
	if !ok {
		t.Fatalf("version payload missing: %v", body["version"])
	}
	if version["status"] != "published" {
		t.Errorf("version status = %v", version["status"])
	}
	if version["version"] != "1.0.0" {
		t.Errorf("version label = %v", version["version"])
	}
	if version["publishedAt"] == nil {
		t.Error("publishedAt missing from payload")
	}
	if version["changelogCount"] != float64(1) {
		t.Errorf("changelogCount = %v, want 1", version["changelogCount"])
	}
	modules, ok := version["moduleVersions"].([]interface{})
	if !ok || len(modules) != 1 {
		t.Fatalf("moduleVersions = %v, want 1 entry", version["moduleVersions"])
	}
}
