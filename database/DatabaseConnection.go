package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"chatlink/initializers"
	"chatlink/models"
)

const (
	connectTimeout = 10 * time.Second
	maxRetries     = 2
	retryDelay     = time.Second
)

func DBinstance() *mongo.Client {
	initializers.LoadEnvVariables()

	mongoUri := os.Getenv("MONGO_URI")
	if mongoUri == "" {
		mongoUri = "mongodb://localhost:27017"
	}

	client, err := connectWithRetry(mongoUri)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	fmt.Println("Connected to MongoDB!")
	return client
}

// connectWithRetry dials the database with bounded exponential backoff.
// The process must not serve traffic without storage, so the caller exits
// when every attempt fails.
func connectWithRetry(uri string) (*mongo.Client, error) {
	delay := retryDelay
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("Retrying MongoDB connection in %s (attempt %d/%d)", delay, attempt+1, maxRetries+1)
			time.Sleep(delay)
			delay *= 2
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, readpref.Primary())
		}
		cancel()

		if err == nil {
			return client, nil
		}
		lastErr = err
		log.Println("MongoDB connection error:", err)
	}
	return nil, lastErr
}

var Client *mongo.Client = DBinstance()

func OpenCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "chatlink"
	}
	return client.Database(dbName).Collection(collectionName)
}

// EnsureIndexes creates the indexes the stores rely on: unique user emails,
// request lookups by either party, and conversation scans.
func EnsureIndexes(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	_, err := OpenCollection(client, "user-collection").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}

	// The partial unique index is what actually enforces at most one
	// pending request per ordered pair; concurrent handlers can both pass
	// the service's count check, and the second insert must fail.
	_, err = OpenCollection(client, "request-collection").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.RequestStatusPending}),
		},
		{Keys: bson.D{{Key: "to", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create request indexes: %w", err)
	}

	_, err = OpenCollection(client, "message-collection").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "timeStamp", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create message index: %w", err)
	}
	return nil
}

// ConnectionState reports whether the client can currently reach the
// database, for the health endpoint.
func ConnectionState(client *mongo.Client) string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return "disconnected"
	}
	return "connected"
}
