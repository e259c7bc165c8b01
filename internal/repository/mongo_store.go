package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	tasksCollection = "tasks"
	usersCollection = "users"
)

// MongoStore is a Store backed by MongoDB. Transactions require a replica
// set or sharded cluster.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo connects to uri and pings the primary.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return NewMongoStore(client, database), nil
}

// NewMongoStore creates a new MongoStore over an existing client
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

// Database exposes the underlying database, used by tests to drop data.
func (s *MongoStore) Database() *mongo.Database {
	return s.db
}

// EnsureIndexes creates the unique email index and the assignee lookup index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = s.db.Collection(tasksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignedUser", Value: 1}, {Key: "completed", Value: 1}}},
		{Keys: bson.D{{Key: "deadline", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Tasks() TaskRepository {
	return &MongoTaskRepository{coll: s.db.Collection(tasksCollection)}
}

func (s *MongoStore) Users() UserRepository {
	return &MongoUserRepository{coll: s.db.Collection(usersCollection)}
}

// StartSession opens a client session with a snapshot, majority-acknowledged
// transaction.
func (s *MongoStore) StartSession(ctx context.Context) (Session, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", translateMongoError(err))
	}

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := sess.StartTransaction(txnOpts); err != nil {
		sess.EndSession(ctx)
		return nil, fmt.Errorf("failed to start transaction: %w", translateMongoError(err))
	}

	return &mongoSession{store: s, sess: sess}, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoSession struct {
	store *MongoStore
	sess  mongo.Session
	done  bool
}

func (s *mongoSession) Tasks() TaskRepository {
	return &MongoTaskRepository{coll: s.store.db.Collection(tasksCollection), sess: s.sess}
}

func (s *mongoSession) Users() UserRepository {
	return &MongoUserRepository{coll: s.store.db.Collection(usersCollection), sess: s.sess}
}

func (s *mongoSession) Commit(ctx context.Context) error {
	if s.done {
		return errors.New("transaction already finished")
	}
	s.done = true
	return translateMongoError(s.sess.CommitTransaction(withSession(ctx, s.sess)))
}

func (s *mongoSession) Abort(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	return translateMongoError(s.sess.AbortTransaction(withSession(ctx, s.sess)))
}

func (s *mongoSession) End(ctx context.Context) {
	s.sess.EndSession(ctx)
}

// withSession binds ctx to sess so operations join its transaction.
func withSession(ctx context.Context, sess mongo.Session) context.Context {
	if sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, sess)
}

// translateMongoError maps driver errors onto the repository error set.
func translateMongoError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.HasErrorLabel("TransientTransactionError") || serverErr.HasErrorCode(112) {
			return fmt.Errorf("%w: %v", ErrWriteConflict, err)
		}
		// BadValue, FailedToParse
		if serverErr.HasErrorCode(2) || serverErr.HasErrorCode(9) {
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
	}

	return err
}
