// cmd/seed は開発用のサンプルデータ (学習者・課題定義・タスク) を投入します。
//
//	go run ./cmd/seed -package unit1.zip -limit 2
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"gorm.io/gorm"
)

func main() {
	learnerName := flag.String("learner", "Jane Doe", "learner name (cmi.learner_name)")
	studentID := flag.String("student-id", "S123", "student id (cmi.learner_id)")
	packagePath := flag.String("package", "", "zip path relative to scorm.package_dir")
	attemptLimit := flag.Int("limit", 0, "scorm attempt limit (0 = unlimited)")
	allowReview := flag.Bool("allow-review", true, "allow review after completion")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, nil))

	if err := config.LoadConfig("configs"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// 開発用なのでテーブルが無ければ作る
	dbCfg := config.Cfg.Database
	dbCfg.AutoMigrate = true
	db, err := repository.NewDB(dbCfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	learner := &model.Learner{LearnerID: uuid.New(), Name: *learnerName, StudentID: *studentID}
	def := &model.TaskDefinition{
		TaskDefinitionID: uuid.New(),
		Name:             "Sample SCORM Test",
		ScormEnabled:     true,
		ScormAllowReview: *allowReview,
	}
	if *attemptLimit > 0 {
		def.ScormAttemptLimit = attemptLimit
	}
	if *packagePath != "" {
		def.ScormPackagePath = packagePath
	}
	task := &model.Task{TaskID: uuid.New(), TaskDefinitionID: def.TaskDefinitionID, LearnerID: learner.LearnerID}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(learner).Error; err != nil {
			return err
		}
		// false の bool も書き込むため Select("*")
		if err := tx.Select("*").Create(def).Error; err != nil {
			return err
		}
		return tx.Create(task).Error
	})
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	fmt.Printf("learner_id=%s\n", learner.LearnerID)
	fmt.Printf("task_definition_id=%s\n", def.TaskDefinitionID)
	fmt.Printf("task_id=%s\n", task.TaskID)
	fmt.Printf("\ncurl -X POST -H 'X-User-ID: %s' http://localhost%s/api/v1/tasks/%s/test_attempts/session\n",
		learner.LearnerID, config.Cfg.Server.Port, task.TaskID)
}
