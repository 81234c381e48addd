package vectorindex

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/tgo/chariott/internal/database"
)

func TestPGVectorIndex_Contract(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Open(dsn, logger.Silent)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS vector_entries").Error)

	idx := NewPGVectorIndex(db, 3)
	require.NoError(t, idx.Migrate(ctx))
	t.Cleanup(func() { db.Exec("DROP TABLE IF EXISTS vector_entries") })

	runIndexContract(t, idx)
}
