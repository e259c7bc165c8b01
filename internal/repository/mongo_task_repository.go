package repository

import (
	"context"

	"github.com/yukikurage/task-user-api/internal/constants"
	"github.com/yukikurage/task-user-api/internal/models"
	"github.com/yukikurage/task-user-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTaskRepository is a MongoDB implementation of TaskRepository
type MongoTaskRepository struct {
	coll *mongo.Collection
	sess mongo.Session
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	_, err := r.coll.InsertOne(withSession(ctx, r.sess), task)
	return translateMongoError(err)
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := r.coll.FindOne(withSession(ctx, r.sess), bson.D{{Key: "_id", Value: id}}).Decode(&task)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Task, error) {
	tasks := []models.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}

	ctx = withSession(ctx, r.sess)
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, translateMongoError(err)
	}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, translateMongoError(err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) List(ctx context.Context, list query.List) ([]models.Task, error) {
	ctx = withSession(ctx, r.sess)
	cursor, err := r.coll.Find(ctx, mongoFilter(list.Filter), mongoFindOptions(list))
	if err != nil {
		return nil, translateMongoError(err)
	}

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, translateMongoError(err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	n, err := r.coll.CountDocuments(withSession(ctx, r.sess), mongoFilter(filter))
	return n, translateMongoError(err)
}

func (r *MongoTaskRepository) Update(ctx context.Context, task *models.Task) error {
	res, err := r.coll.ReplaceOne(withSession(ctx, r.sess), bson.D{{Key: "_id", Value: task.ID}}, task)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(withSession(ctx, r.sess), bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Assign(ctx context.Context, ids []string, userID, userName string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(withSession(ctx, r.sess),
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "assignedUser", Value: userID},
			{Key: "assignedUserName", Value: userName},
		}}},
	)
	return translateMongoError(err)
}

func (r *MongoTaskRepository) Release(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(withSession(ctx, r.sess),
		bson.D{
			{Key: "assignedUser", Value: userID},
			{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
		},
		unassignUpdate(),
	)
	return translateMongoError(err)
}

func (r *MongoTaskRepository) ReleaseAll(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateMany(withSession(ctx, r.sess),
		bson.D{{Key: "assignedUser", Value: userID}},
		unassignUpdate(),
	)
	return translateMongoError(err)
}

func (r *MongoTaskRepository) RenameAssignee(ctx context.Context, userID, userName string) error {
	_, err := r.coll.UpdateMany(withSession(ctx, r.sess),
		bson.D{{Key: "assignedUser", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "assignedUserName", Value: userName}}}},
	)
	return translateMongoError(err)
}

func unassignUpdate() bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "assignedUser", Value: ""},
		{Key: "assignedUserName", Value: constants.UnassignedUserName},
	}}}
}
