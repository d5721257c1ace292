// Package testutil holds helpers shared by storage integration tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"noteful/internal/db"
)

// MongoURIEnv names the variable that enables Mongo-backed tests.
const MongoURIEnv = "NOTEFUL_TEST_MONGODB_URI"

// Mongo returns a fresh, uniquely named database and drops it when the
// test ends. The test is skipped when MongoURIEnv is unset.
func Mongo(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		t.Skipf("%s not set; skipping MongoDB integration test", MongoURIEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := "noteful_test_" + uuid.NewString()[:8]
	database, err := db.Connect(ctx, uri, name)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = database.Drop(ctx)
		_ = db.Disconnect(database, 5*time.Second)
	})
	return database
}
