// 历史课程版本补建脚本
//
// 给版本引擎上线前创建的课程补建第一个已发布版本（1.0.0），
// 已有 current_version_id 的课程会被跳过，可安全重复执行。
//
// 用法: go run scripts/backfill_versions.go

package main

import (
	"course_studio_backend/internal/config"
	"course_studio_backend/internal/repository"
	"course_studio_backend/internal/service"
	"course_studio_backend/pkg/database"
	"course_studio_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	courseRepo := repository.NewCourseRepository(db)
	versionRepo := repository.NewCourseVersionRepository(db)
	backfill := service.NewVersionBackfillService(courseRepo, versionRepo, db)

	log.Println("开始补建历史课程版本...")
	result, err := backfill.BackfillAll()
	if err != nil {
		log.Fatalf("补建任务执行失败: %v", err)
	}

	for _, e := range result.Errors {
		log.Printf("课程 %d 补建失败: %s", e.CourseID, e.Error)
	}
	log.Printf("完成！成功 %d 门，失败 %d 门", result.SuccessCount, result.ErrorCount)
}
