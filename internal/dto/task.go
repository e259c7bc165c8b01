package dto

import (
	"time"

	"github.com/yukikurage/task-user-api/internal/services"
)

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Name             string         `json:"name" validate:"required"`
	Description      string         `json:"description"`
	Deadline         *time.Time     `json:"deadline" validate:"required"`
	Completed        bool           `json:"completed"`
	AssignedUser     OptionalString `json:"assignedUser" validate:"omitempty,objectid"`
	AssignedUserName string         `json:"assignedUserName"`
	DateCreated      *time.Time     `json:"dateCreated"`
}

// UpdateTaskRequest represents the request body for updating a task. Absent
// fields keep their stored value; a null or empty assignedUser unassigns.
type UpdateTaskRequest struct {
	Name             *string        `json:"name" validate:"omitnil,min=1"`
	Description      *string        `json:"description"`
	Deadline         *time.Time     `json:"deadline"`
	Completed        *bool          `json:"completed"`
	AssignedUser     OptionalString `json:"assignedUser" validate:"omitempty,objectid"`
	AssignedUserName *string        `json:"assignedUserName"`
}

// ToInput converts the request into a service input
func (r *CreateTaskRequest) ToInput() services.CreateTaskInput {
	input := services.CreateTaskInput{
		Name:             r.Name,
		Description:      r.Description,
		Completed:        r.Completed,
		AssignedUser:     r.AssignedUser.Value,
		AssignedUserName: r.AssignedUserName,
		DateCreated:      r.DateCreated,
	}
	if r.Deadline != nil {
		input.Deadline = *r.Deadline
	}
	return input
}

// ToInput converts the request into a service input
func (r *UpdateTaskRequest) ToInput() services.UpdateTaskInput {
	return services.UpdateTaskInput{
		Name:             r.Name,
		Description:      r.Description,
		Deadline:         r.Deadline,
		Completed:        r.Completed,
		AssignedUser:     r.AssignedUser.Ptr(),
		AssignedUserName: r.AssignedUserName,
	}
}
