package database

import (
	"course_studio_backend/internal/config"
	"course_studio_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string, forceMigrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式下默认不自动迁移，需通过 -migrate 显式开启
	if mode == "release" && !forceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Module{},
		&model.Activity{},
		&model.CourseVersion{},
		&model.ModuleVersion{},
		&model.ActivityVersion{},
		&model.VersionChangelogEntry{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}
