package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-user-api/internal/constants"
	"github.com/yukikurage/task-user-api/internal/models"
	"github.com/yukikurage/task-user-api/internal/query"
	"github.com/yukikurage/task-user-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService keeps tasks and the pendingTasks sets of their assignees
// consistent across task mutations.
type TaskService struct {
	store        repository.Store
	tx           *Transactor
	log          *logrus.Logger
	defaultLimit int
}

// NewTaskService creates a new TaskService. defaultLimit caps listings that
// do not pass a limit.
func NewTaskService(store repository.Store, tx *Transactor, log *logrus.Logger, defaultLimit int) *TaskService {
	return &TaskService{
		store:        store,
		tx:           tx,
		log:          log,
		defaultLimit: defaultLimit,
	}
}

// CreateTaskInput represents input for creating a task. AssignedUserName is
// advisory; an empty value means the caller did not supply one.
type CreateTaskInput struct {
	Name             string
	Description      string
	Deadline         time.Time
	Completed        bool
	AssignedUser     string
	AssignedUserName string
	DateCreated      *time.Time
}

// UpdateTaskInput represents a partial task update. Nil fields keep their
// stored value; an AssignedUser pointing at "" unassigns the task.
type UpdateTaskInput struct {
	Name             *string
	Description      *string
	Deadline         *time.Time
	Completed        *bool
	AssignedUser     *string
	AssignedUserName *string
}

// ListTasks counts or lists tasks
func (s *TaskService) ListTasks(ctx context.Context, input ListInput) (*ListResult[models.Task], error) {
	const op = "list tasks"

	params, err := query.Parse(query.TaskFields, input.Where, input.Sort, input.Select)
	if err != nil {
		return nil, storeError(op, err)
	}

	if input.Count {
		n, err := s.store.Tasks().Count(ctx, params.Filter)
		if err != nil {
			return nil, storeError(op, err)
		}
		return &ListResult[models.Task]{CountOnly: true, Count: n}, nil
	}

	tasks, err := s.store.Tasks().List(ctx, input.listing(params, s.defaultLimit))
	if err != nil {
		return nil, storeError(op, err)
	}

	result := &ListResult[models.Task]{Items: tasks}
	if err := project(result, params.Projection); err != nil {
		return nil, storeError(op, err)
	}
	return result, nil
}

// GetTask returns the task, projected when sel is non-empty
func (s *TaskService) GetTask(ctx context.Context, id, sel string) (any, error) {
	const op = "get task"

	projection, err := query.ParseProjection(query.TaskFields, sel)
	if err != nil {
		return nil, storeError(op, err)
	}

	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, taskNotFound(id)
		}
		return nil, storeError(op, err)
	}

	return view(task, projection)
}

// CreateTask inserts a task and, when it is pending, adds it to its
// assignee's pendingTasks. The returned warning is non-empty when the caller
// supplied an assignedUserName that was overridden.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, string, error) {
	const op = "create task"
	logger := s.log.WithField("operation", op)

	task := &models.Task{
		ID:          primitive.NewObjectID().Hex(),
		Name:        input.Name,
		Description: input.Description,
		Deadline:    input.Deadline,
		Completed:   input.Completed,
		DateCreated: now(),
	}
	if input.DateCreated != nil {
		task.DateCreated = *input.DateCreated
	}

	var warning string
	err := s.tx.Run(ctx, op, func(ctx context.Context, session repository.Session) error {
		if input.AssignedUser == "" {
			task.Unassign()
			warning = unassignedNameWarning(input.AssignedUserName)
		} else {
			user, err := findUser(ctx, session, input.AssignedUser)
			if err != nil {
				return err
			}
			task.AssignedUser = user.ID
			task.AssignedUserName = user.Name
			warning = nameMismatchWarning(user.Name, input.AssignedUserName)
		}

		if err := session.Tasks().Create(ctx, task); err != nil {
			return err
		}

		if task.Pending() {
			if err := session.Users().PushPendingTask(ctx, task.AssignedUser, task.ID); err != nil {
				return fmt.Errorf("push pending task: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	logger.WithFields(logrus.Fields{
		"task_id":       task.ID,
		"assigned_user": task.AssignedUser,
	}).Info("Task created")
	return task, warning, nil
}

// UpdateTask merges input onto the stored task and moves the task between
// pendingTasks sets as its assignee and completion change.
func (s *TaskService) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*models.Task, string, error) {
	const op = "update task"
	logger := s.log.WithField("operation", op)

	var (
		updated *models.Task
		warning string
	)
	err := s.tx.Run(ctx, op, func(ctx context.Context, session repository.Session) error {
		existing, err := session.Tasks().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return taskNotFound(id)
			}
			return err
		}

		merged := *existing
		input.apply(&merged)

		supplied := ""
		if input.AssignedUserName != nil {
			supplied = *input.AssignedUserName
		}

		oldUser, _ := existing.Assignee()
		newUser, assigned := merged.Assignee()
		switch {
		case !assigned:
			merged.Unassign()
			warning = unassignedNameWarning(supplied)
		case newUser == oldUser:
			merged.AssignedUserName = existing.AssignedUserName
			warning = nameMismatchWarning(existing.AssignedUserName, supplied)
		default:
			user, err := findUser(ctx, session, newUser)
			if err != nil {
				return err
			}
			merged.AssignedUserName = user.Name
			warning = nameMismatchWarning(user.Name, supplied)
		}

		if err := session.Tasks().Update(ctx, &merged); err != nil {
			return err
		}

		wasPending, isPending := existing.Pending(), merged.Pending()
		moved := oldUser != newUser
		if wasPending && (!isPending || moved) {
			if err := session.Users().PullPendingTask(ctx, oldUser, id); err != nil {
				return fmt.Errorf("pull pending task: %w", err)
			}
		}
		if isPending && (!wasPending || moved) {
			if err := session.Users().PushPendingTask(ctx, newUser, id); err != nil {
				return fmt.Errorf("push pending task: %w", err)
			}
		}

		updated = &merged
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	logger.WithField("task_id", id).Info("Task updated")
	return updated, warning, nil
}

// DeleteTask removes a task and drops it from its assignee's pendingTasks
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	const op = "delete task"

	err := s.tx.Run(ctx, op, func(ctx context.Context, session repository.Session) error {
		existing, err := session.Tasks().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return taskNotFound(id)
			}
			return err
		}

		if err := session.Tasks().Delete(ctx, id); err != nil {
			return err
		}

		if existing.Pending() {
			if err := session.Users().PullPendingTask(ctx, existing.AssignedUser, id); err != nil {
				return fmt.Errorf("pull pending task: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("operation", op).WithField("task_id", id).Info("Task deleted")
	return nil
}

func (in UpdateTaskInput) apply(task *models.Task) {
	if in.Name != nil {
		task.Name = *in.Name
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Deadline != nil {
		task.Deadline = *in.Deadline
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	if in.AssignedUser != nil {
		task.AssignedUser = *in.AssignedUser
	}
}

func findUser(ctx context.Context, session repository.Session, id string) (*models.User, error) {
	user, err := session.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, err
	}
	return user, nil
}

func nameMismatchWarning(name, supplied string) string {
	if supplied == "" || supplied == name {
		return ""
	}
	return fmt.Sprintf("User name [%s] and task assigned user name [%s] do not match", name, supplied)
}

func unassignedNameWarning(supplied string) string {
	if supplied == "" || supplied == constants.UnassignedUserName {
		return ""
	}
	return fmt.Sprintf("Task assigned user name should be %q instead of [%s]", constants.UnassignedUserName, supplied)
}

// now is the creation timestamp, truncated to what every store can hold
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
