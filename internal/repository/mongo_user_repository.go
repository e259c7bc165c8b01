package repository

import (
	"context"

	"github.com/yukikurage/task-user-api/internal/models"
	"github.com/yukikurage/task-user-api/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserRepository is a MongoDB implementation of UserRepository. The
// pendingTasks set is an array on the user document.
type MongoUserRepository struct {
	coll *mongo.Collection
	sess mongo.Session
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}
	_, err := r.coll.InsertOne(withSession(ctx, r.sess), user)
	return translateMongoError(err)
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(withSession(ctx, r.sess), filter).Decode(&user); err != nil {
		return nil, translateMongoError(err)
	}
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}
	return &user, nil
}

func (r *MongoUserRepository) List(ctx context.Context, list query.List) ([]models.User, error) {
	ctx = withSession(ctx, r.sess)
	cursor, err := r.coll.Find(ctx, mongoFilter(list.Filter), mongoFindOptions(list))
	if err != nil {
		return nil, translateMongoError(err)
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translateMongoError(err)
	}
	for i := range users {
		if users[i].PendingTasks == nil {
			users[i].PendingTasks = []string{}
		}
	}
	return users, nil
}

func (r *MongoUserRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	n, err := r.coll.CountDocuments(withSession(ctx, r.sess), mongoFilter(filter))
	return n, translateMongoError(err)
}

func (r *MongoUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}
	res, err := r.coll.ReplaceOne(withSession(ctx, r.sess), bson.D{{Key: "_id", Value: user.ID}}, user)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(withSession(ctx, r.sess), bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushPendingTask adds taskID with $addToSet, so pushing twice is a no-op
func (r *MongoUserRepository) PushPendingTask(ctx context.Context, userID, taskID string) error {
	_, err := r.coll.UpdateOne(withSession(ctx, r.sess),
		bson.D{{Key: "_id", Value: userID}},
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "pendingTasks", Value: taskID}}}},
	)
	return translateMongoError(err)
}

func (r *MongoUserRepository) PullPendingTask(ctx context.Context, userID, taskID string) error {
	_, err := r.coll.UpdateOne(withSession(ctx, r.sess),
		bson.D{{Key: "_id", Value: userID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "pendingTasks", Value: taskID}}}},
	)
	return translateMongoError(err)
}
