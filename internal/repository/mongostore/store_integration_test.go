package mongostore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/repository/mongostore"
	"github.com/spec-kit/grievance-service/internal/repository/repositorytest"
)

func TestMongoStoreContract(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if os.Getenv("RUN_INTEGRATION_TESTS") == "" || uri == "" {
		t.Skip("set RUN_INTEGRATION_TESTS=1 and MONGO_URI to run mongo integration tests")
	}
	ctx := context.Background()

	m, err := persistence.NewMongo(ctx, config.MongoConfig{
		URI:      uri,
		Database: "grievances_test_" + uuid.NewString()[:8],
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Database.Drop(context.Background())
		m.Close(context.Background())
	})
	require.NoError(t, mongostore.EnsureIndexes(ctx, m.Database))

	repositorytest.Run(t, mongostore.NewStore(m.Database))
}
