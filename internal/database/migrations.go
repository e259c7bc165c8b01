package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-user-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the consistency protocol queries by
func AddIndexes(db *gorm.DB, log *logrus.Logger) error {
	indexes := []struct {
		model   any
		name    string
		columns string
	}{
		// pending tasks of a user that are still open, used by rename and cascade
		{&models.Task{}, "idx_tasks_assigned_user_completed", "assigned_user, completed"},
		{&models.Task{}, "idx_tasks_deadline", "deadline"},
		{&models.Task{}, "idx_tasks_date_created", "date_created"},
		{&models.User{}, "idx_users_date_created", "date_created"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to resolve table for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithField("index", idx.name).Infof("Created index on %s(%s)", stmt.Schema.Table, idx.columns)
	}

	return nil
}
