package dto

import (
	"time"

	"github.com/yukikurage/task-user-api/internal/services"
)

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name         string     `json:"name" validate:"required"`
	Email        string     `json:"email" validate:"required,email"`
	PendingTasks []string   `json:"pendingTasks" validate:"omitempty,dive,objectid"`
	DateCreated  *time.Time `json:"dateCreated"`
}

// UpdateUserRequest represents the request body for updating a user. A
// pendingTasks array replaces the whole set.
type UpdateUserRequest struct {
	Name         *string   `json:"name" validate:"omitnil,min=1"`
	Email        *string   `json:"email" validate:"omitnil,email"`
	PendingTasks *[]string `json:"pendingTasks" validate:"omitnil,dive,objectid"`
}

// ToInput converts the request into a service input
func (r *CreateUserRequest) ToInput() services.CreateUserInput {
	return services.CreateUserInput{
		Name:         r.Name,
		Email:        r.Email,
		PendingTasks: r.PendingTasks,
		DateCreated:  r.DateCreated,
	}
}

// ToInput converts the request into a service input
func (r *UpdateUserRequest) ToInput() services.UpdateUserInput {
	return services.UpdateUserInput{
		Name:         r.Name,
		Email:        r.Email,
		PendingTasks: r.PendingTasks,
	}
}
