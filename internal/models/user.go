package models

import (
	"time"
)

type User struct {
	ID           string    `gorm:"primarykey;type:varchar(24)" json:"id" bson:"_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name" bson:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" bson:"email"`
	PendingTasks []string  `gorm:"-" json:"pendingTasks" bson:"pendingTasks"`
	DateCreated  time.Time `gorm:"not null" json:"dateCreated" bson:"dateCreated"`

	// Relations
	PendingTaskRefs []PendingTask `gorm:"foreignKey:UserID" json:"-" bson:"-"`
}

// HasPendingTask reports whether taskID is in the user's pending set.
func (u *User) HasPendingTask(taskID string) bool {
	for _, id := range u.PendingTasks {
		if id == taskID {
			return true
		}
	}
	return false
}
