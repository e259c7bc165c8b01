package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/task-user-api/internal/models"
	"github.com/yukikurage/task-user-api/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository. The
// pendingTasks set is stored as rows of the pending_tasks table.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user and its pending task rows
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(user).Error; err != nil {
		return translateError(err)
	}
	if err := r.insertPending(db, user.ID, user.PendingTasks); err != nil {
		return err
	}
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}
	return nil
}

// FindByID finds a user by id
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.preload(r.db.WithContext(ctx)).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	hydrate(&user)
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.preload(r.db.WithContext(ctx)).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	hydrate(&user)
	return &user, nil
}

// List retrieves users with filtering, sorting and pagination
func (r *GormUserRepository) List(ctx context.Context, list query.List) ([]models.User, error) {
	db := r.db.WithContext(ctx).Model(&models.User{})
	db, rest, err := r.applyPendingFilter(db, list.Filter)
	if err != nil {
		return nil, err
	}
	list.Filter = rest

	q, err := applyListing(db, list)
	if err != nil {
		return nil, err
	}

	users := []models.User{}
	if err := r.preload(q).Find(&users).Error; err != nil {
		return nil, translateError(err)
	}
	for i := range users {
		hydrate(&users[i])
	}
	return users, nil
}

// Count counts users matching the filter
func (r *GormUserRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	db := r.db.WithContext(ctx).Model(&models.User{})
	db, rest, err := r.applyPendingFilter(db, filter)
	if err != nil {
		return 0, err
	}

	q, err := applyFilter(db, rest)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

// Update writes the user's columns and replaces its pending task rows
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	db := r.db.WithContext(ctx)
	err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Select("name", "email", "date_created").
		Updates(user).Error
	if err != nil {
		return translateError(err)
	}

	stale := db.Where("user_id = ?", user.ID)
	if len(user.PendingTasks) > 0 {
		stale = stale.Where("task_id NOT IN ?", user.PendingTasks)
	}
	if err := stale.Delete(&models.PendingTask{}).Error; err != nil {
		return translateError(err)
	}

	return r.insertPending(db, user.ID, user.PendingTasks)
}

// Delete removes a user and its pending task rows
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&models.PendingTask{}).Error; err != nil {
		return translateError(err)
	}

	result := db.Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PushPendingTask adds taskID to the user's pending set. Pushing a member
// already present is a no-op.
func (r *GormUserRepository) PushPendingTask(ctx context.Context, userID, taskID string) error {
	return r.insertPending(r.db.WithContext(ctx), userID, []string{taskID})
}

// PullPendingTask removes taskID from the user's pending set
func (r *GormUserRepository) PullPendingTask(ctx context.Context, userID, taskID string) error {
	return translateError(r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Delete(&models.PendingTask{}).Error)
}

func (r *GormUserRepository) insertPending(db *gorm.DB, userID string, taskIDs []string) error {
	if len(taskIDs) == 0 {
		return nil
	}

	rows := make([]models.PendingTask, len(taskIDs))
	for i, taskID := range taskIDs {
		rows[i] = models.PendingTask{UserID: userID, TaskID: taskID}
	}

	return translateError(db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error)
}

func (r *GormUserRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("PendingTaskRefs", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, task_id")
	})
}

// applyPendingFilter rewrites conditions on pendingTasks into membership
// subqueries against pending_tasks and returns the remaining conditions.
func (r *GormUserRepository) applyPendingFilter(db *gorm.DB, filter query.Filter) (*gorm.DB, query.Filter, error) {
	var rest query.Filter
	for _, cond := range filter {
		if cond.Field.Kind != query.KindStringList {
			rest = append(rest, cond)
			continue
		}

		members := r.db.Model(&models.PendingTask{}).Select("user_id")
		switch cond.Op {
		case query.OpEq:
			db = db.Where("id IN (?)", members.Where("task_id = ?", cond.Value))
		case query.OpNe:
			db = db.Where("id NOT IN (?)", members.Where("task_id = ?", cond.Value))
		case query.OpIn:
			db = db.Where("id IN (?)", members.Where("task_id IN ?", cond.Value))
		case query.OpNin:
			db = db.Where("id NOT IN (?)", members.Where("task_id IN ?", cond.Value))
		default:
			return nil, nil, fmt.Errorf("%w: %s is not supported on %q", ErrInvalidQuery, cond.Op, cond.Field.Name)
		}
	}
	return db, rest, nil
}

// hydrate copies the pending rows into the wire-level pendingTasks list.
func hydrate(user *models.User) {
	user.PendingTasks = make([]string, 0, len(user.PendingTaskRefs))
	for _, ref := range user.PendingTaskRefs {
		user.PendingTasks = append(user.PendingTasks, ref.TaskID)
	}
	user.PendingTaskRefs = nil
}
