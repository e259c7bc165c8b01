package models

import (
	"time"

	"github.com/yukikurage/task-user-api/internal/constants"
)

type Task struct {
	ID               string    `gorm:"primarykey;type:varchar(24)" json:"id" bson:"_id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name" bson:"name"`
	Description      string    `gorm:"type:text" json:"description" bson:"description"`
	Deadline         time.Time `gorm:"not null" json:"deadline" bson:"deadline"`
	Completed        bool      `gorm:"not null;default:false;index" json:"completed" bson:"completed"`
	AssignedUser     string    `gorm:"type:varchar(24);not null;default:'';index" json:"assignedUser" bson:"assignedUser"`
	AssignedUserName string    `gorm:"type:varchar(255);not null;default:'unassigned'" json:"assignedUserName" bson:"assignedUserName"`
	DateCreated      time.Time `gorm:"not null" json:"dateCreated" bson:"dateCreated"`
}

// Assignee reports the referenced user id, if any. An empty AssignedUser is
// the stored form of "no assignee".
func (t *Task) Assignee() (string, bool) {
	return t.AssignedUser, t.AssignedUser != ""
}

// Pending reports whether the task belongs in its assignee's pendingTasks.
func (t *Task) Pending() bool {
	_, assigned := t.Assignee()
	return assigned && !t.Completed
}

// Unassign clears the reference and resets the cached name.
func (t *Task) Unassign() {
	t.AssignedUser = ""
	t.AssignedUserName = constants.UnassignedUserName
}
