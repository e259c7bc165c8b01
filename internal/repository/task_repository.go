package repository

import (
	"context"

	"github.com/yukikurage/task-user-api/internal/constants"
	"github.com/yukikurage/task-user-api/internal/models"
	"github.com/yukikurage/task-user-api/internal/query"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return translateError(r.db.WithContext(ctx).Create(task).Error)
}

// FindByID finds a task by id
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, translateError(err)
	}
	return &task, nil
}

// FindByIDs returns the tasks among ids that exist, in no particular order
func (r *GormTaskRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Task, error) {
	tasks := []models.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, translateError(err)
	}
	return tasks, nil
}

// List retrieves tasks with filtering, sorting and pagination
func (r *GormTaskRepository) List(ctx context.Context, list query.List) ([]models.Task, error) {
	q, err := applyListing(r.db.WithContext(ctx).Model(&models.Task{}), list)
	if err != nil {
		return nil, err
	}

	tasks := []models.Task{}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, translateError(err)
	}
	return tasks, nil
}

// Count counts tasks matching the filter
func (r *GormTaskRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	q, err := applyFilter(r.db.WithContext(ctx).Model(&models.Task{}), filter)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return translateError(r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).
		Select("*").Omit("id").Updates(task).Error)
}

// Delete removes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Assign points every task in ids at the user
func (r *GormTaskRepository) Assign(ctx context.Context, ids []string, userID, userName string) error {
	if len(ids) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"assigned_user":      userID,
			"assigned_user_name": userName,
		}).Error)
}

// Release unassigns the tasks in ids that still point at the user
func (r *GormTaskRepository) Release(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Model(&models.Task{}).
		Where("assigned_user = ? AND id IN ?", userID, ids).
		Updates(unassigned()).Error)
}

// ReleaseAll unassigns every task assigned to the user, completed or not
func (r *GormTaskRepository) ReleaseAll(ctx context.Context, userID string) error {
	return translateError(r.db.WithContext(ctx).Model(&models.Task{}).
		Where("assigned_user = ?", userID).
		Updates(unassigned()).Error)
}

// RenameAssignee rewrites the cached assignee name on the user's tasks
func (r *GormTaskRepository) RenameAssignee(ctx context.Context, userID, userName string) error {
	return translateError(r.db.WithContext(ctx).Model(&models.Task{}).
		Where("assigned_user = ?", userID).
		Update("assigned_user_name", userName).Error)
}

func unassigned() map[string]interface{} {
	return map[string]interface{}{
		"assigned_user":      "",
		"assigned_user_name": constants.UnassignedUserName,
	}
}
