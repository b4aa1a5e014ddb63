package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect dials MongoDB and verifies the connection with a ping,
// retrying up to retries attempts with a fixed delay in between.  The
// store is a separate networked process, so a short outage during
// startup is expected; only after exhausting the retries is the
// failure surfaced, at which point the process cannot proceed.
func Connect(uri string, timeout time.Duration, retries int, delay time.Duration) (*mongo.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		client, err := tryConnect(uri, timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		if attempt < retries {
			log.Printf("database: attempt %d of %d failed: %v; retrying in %s", attempt, retries, err, delay)
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("connect to mongodb after %d attempts: %w", retries, lastErr)
}

func tryConnect(uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	// Connect alone does not guarantee a reachable server.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
