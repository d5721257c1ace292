package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client.Database(dbName), nil
}

// Disconnect closes the client behind database, waiting at most timeout.
func Disconnect(database *mongo.Database, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := database.Client().Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

// Pinger reports database liveness for the health endpoint.
type Pinger struct {
	client *mongo.Client
}

func NewPinger(database *mongo.Database) *Pinger {
	return &Pinger{client: database.Client()}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// TxManager runs functions inside multi-document transactions.
// Transactions need a replica set or sharded cluster.
type TxManager struct {
	client *mongo.Client
}

func NewTxManager(database *mongo.Database) *TxManager {
	return &TxManager{client: database.Client()}
}

// ExecTx runs fn in a transaction. fn must use the context it receives for
// every operation that belongs to the transaction. Errors from fn are
// returned unchanged after the transaction is aborted.
func (tm *TxManager) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := tm.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
