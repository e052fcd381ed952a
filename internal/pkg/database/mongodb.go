package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	CollectionEmployees     = "employees"
	CollectionAttendances   = "attendances"
	CollectionLeaveRequests = "leave_requests"
)

type DB struct {
	Client *mongo.Client
	*mongo.Database
}

func NewMongoDB(ctx context.Context, uri string, name string, timeout time.Duration) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetMinPoolSize(5).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &DB{
		Client:   client,
		Database: client.Database(name),
	}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// emp_id index backs up the boss seeding when two instances start together.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionEmployees: {
			{
				Keys:    bson.D{{Key: "emp_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_emp_id"),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_email"),
			},
			{
				Keys:    bson.D{{Key: "role", Value: 1}},
				Options: options.Index().SetName("idx_role"),
			},
		},
		CollectionAttendances: {
			{
				Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_employee_date"),
			},
			{
				Keys:    bson.D{{Key: "date", Value: -1}},
				Options: options.Index().SetName("idx_date"),
			},
		},
		CollectionLeaveRequests: {
			{
				Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("idx_employee_status"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_status_created"),
			},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
