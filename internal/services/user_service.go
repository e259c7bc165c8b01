package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-user-api/internal/models"
	"github.com/yukikurage/task-user-api/internal/query"
	"github.com/yukikurage/task-user-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService keeps users and the tasks referencing them consistent across
// user mutations.
type UserService struct {
	store repository.Store
	tx    *Transactor
	log   *logrus.Logger
}

// NewUserService creates a new UserService
func NewUserService(store repository.Store, tx *Transactor, log *logrus.Logger) *UserService {
	return &UserService{store: store, tx: tx, log: log}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Name         string
	Email        string
	PendingTasks []string
	DateCreated  *time.Time
}

// UpdateUserInput represents a partial user update. A non-nil PendingTasks
// replaces the whole set.
type UpdateUserInput struct {
	Name         *string
	Email        *string
	PendingTasks *[]string
}

// ListUsers counts or lists users. Listings are unlimited unless a limit is given.
func (s *UserService) ListUsers(ctx context.Context, input ListInput) (*ListResult[models.User], error) {
	const op = "list users"

	params, err := query.Parse(query.UserFields, input.Where, input.Sort, input.Select)
	if err != nil {
		return nil, storeError(op, err)
	}

	if input.Count {
		n, err := s.store.Users().Count(ctx, params.Filter)
		if err != nil {
			return nil, storeError(op, err)
		}
		return &ListResult[models.User]{CountOnly: true, Count: n}, nil
	}

	users, err := s.store.Users().List(ctx, input.listing(params, 0))
	if err != nil {
		return nil, storeError(op, err)
	}

	result := &ListResult[models.User]{Items: users}
	if err := project(result, params.Projection); err != nil {
		return nil, storeError(op, err)
	}
	return result, nil
}

// GetUser returns the user, projected when sel is non-empty
func (s *UserService) GetUser(ctx context.Context, id, sel string) (any, error) {
	const op = "get user"

	projection, err := query.ParseProjection(query.UserFields, sel)
	if err != nil {
		return nil, storeError(op, err)
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, storeError(op, err)
	}

	return view(user, projection)
}

// CreateUser inserts a user and assigns every task of its pendingTasks to it.
// Each pending task must exist, be open and be unassigned.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	const op = "create user"

	user := &models.User{
		ID:           primitive.NewObjectID().Hex(),
		Name:         input.Name,
		Email:        input.Email,
		PendingTasks: dedupe(input.PendingTasks),
		DateCreated:  now(),
	}
	if input.DateCreated != nil {
		user.DateCreated = *input.DateCreated
	}

	err := s.tx.Run(ctx, op, func(ctx context.Context, session repository.Session) error {
		if err := ensureEmailFree(ctx, session, user.Email, ""); err != nil {
			return err
		}

		invalid, err := ineligibleTasks(ctx, session.Tasks(), user.PendingTasks)
		if err != nil {
			return err
		}
		if len(invalid) > 0 {
			return pendingTasksConflict(invalid)
		}

		if err := session.Users().Create(ctx, user); err != nil {
			return err
		}
		return session.Tasks().Assign(ctx, user.PendingTasks, user.ID, user.Name)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"operation":     op,
		"user_id":       user.ID,
		"pending_tasks": len(user.PendingTasks),
	}).Info("User created")
	return user, nil
}

// UpdateUser merges input onto the stored user. Tasks leaving pendingTasks
// are unassigned, tasks joining it are assigned, and a rename is copied to
// every task still assigned to the user.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	const op = "update user"

	var updated *models.User
	err := s.tx.Run(ctx, op, func(ctx context.Context, session repository.Session) error {
		existing, err := findUser(ctx, session, id)
		if err != nil {
			return err
		}

		merged := *existing
		if input.Name != nil {
			merged.Name = *input.Name
		}
		if input.Email != nil {
			merged.Email = *input.Email
		}
		if input.PendingTasks != nil {
			merged.PendingTasks = dedupe(*input.PendingTasks)
		}

		if merged.Email != existing.Email {
			if err := ensureEmailFree(ctx, session, merged.Email, id); err != nil {
				return err
			}
		}

		unassigned, assigned := diffReferences(existing.PendingTasks, merged.PendingTasks)
		invalid, err := ineligibleTasks(ctx, session.Tasks(), assigned)
		if err != nil {
			return err
		}
		if len(invalid) > 0 {
			return pendingTasksConflict(invalid)
		}

		if err := session.Users().Update(ctx, &merged); err != nil {
			return err
		}
		if err := session.Tasks().Release(ctx, id, unassigned); err != nil {
			return err
		}
		// the rename reaches tasks that stay assigned, including completed ones
		if merged.Name != existing.Name {
			if err := session.Tasks().RenameAssignee(ctx, id, merged.Name); err != nil {
				return err
			}
		}
		if err := session.Tasks().Assign(ctx, assigned, id, merged.Name); err != nil {
			return err
		}

		updated = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"operation": op,
		"user_id":   id,
	}).Info("User updated")
	return updated, nil
}

// DeleteUser removes a user and unassigns every task referencing it,
// completed or not.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	const op = "delete user"

	err := s.tx.Run(ctx, op, func(ctx context.Context, session repository.Session) error {
		if err := session.Users().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return userNotFound(id)
			}
			return err
		}
		return session.Tasks().ReleaseAll(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"operation": op,
		"user_id":   id,
	}).Info("User deleted")
	return nil
}

// ensureEmailFree fails with a conflict when email belongs to a user other
// than selfID.
func ensureEmailFree(ctx context.Context, session repository.Session, email, selfID string) error {
	other, err := session.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if other.ID != selfID {
		return emailConflict(email)
	}
	return nil
}
