package models

import (
	"time"
)

// PendingTask is one member of a user's pendingTasks set in relational stores.
type PendingTask struct {
	UserID    string    `gorm:"primarykey;type:varchar(24)" json:"user_id"`
	TaskID    string    `gorm:"primarykey;type:varchar(24);index" json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}
