package repository

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/model"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqliteScheme で始まるURLはSQLite (ローカル開発・テスト用) として開く
const sqliteScheme = "sqlite:"

// NewDB はデータベースに接続した *gorm.DB を返します
func NewDB(cfg config.DatabaseConfig, appLogger *slog.Logger) (*gorm.DB, error) {
	gormLogLevel := gormlogger.Warn
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		gormLogLevel = gormlogger.Info
	}

	slogGormLogger := slogGorm.New(
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithTraceAll(),
		slogGorm.WithSlowThreshold(500*time.Millisecond),
	)

	isSQLite := strings.HasPrefix(cfg.URL, sqliteScheme)
	var dialector gorm.Dialector
	if isSQLite {
		dialector = sqlite.Open(strings.TrimPrefix(cfg.URL, sqliteScheme))
	} else {
		dialector = postgres.Open(cfg.URL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: slogGormLogger.LogMode(gormLogLevel),
		// 一意制約違反を gorm.ErrDuplicatedKey に変換する
		TranslateError: true,
	})
	if err != nil {
		appLogger.Error("Failed to connect to database with GORM", slog.Any("error", err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		return nil, err
	}

	if err = sqlDB.Ping(); err != nil {
		appLogger.Error("Error pinging database", slog.Any("error", err))
		sqlDB.Close()
		return nil, err
	}

	if isSQLite {
		// SQLiteは書き込みが1本しか通らないので、接続を1本にしてトランザクションを直列化する
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	appLogger.Info("Database connection established with GORM", "dialect", db.Dialector.Name())

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			appLogger.Error("Failed to auto-migrate database", slog.Any("error", err))
			sqlDB.Close()
			return nil, err
		}
		appLogger.Info("Database schema auto-migrated")
	}

	return db, nil
}

// AutoMigrate はローカル開発・テスト用にテーブルを作成します
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Learner{},
		&model.TaskDefinition{},
		&model.Task{},
		&model.TestAttempt{},
		&model.TaskComment{},
	); err != nil {
		return fmt.Errorf("repository.AutoMigrate: %w", err)
	}
	return nil
}
