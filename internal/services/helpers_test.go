package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"rewind-bknd/internal/database"
	"rewind-bknd/internal/seed"

	"github.com/uptrace/bun"
)

var dbName = strings.NewReplacer("/", "_", " ", "_")

// newTestDB returns an in-memory sqlite database with the schema created and
// the default reference tables loaded.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName.Replace(t.Name())))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	data, err := seed.Default()
	if err != nil {
		t.Fatalf("load default seed: %v", err)
	}
	if err := seed.Apply(ctx, db, data); err != nil {
		t.Fatalf("apply seed: %v", err)
	}
	return db
}
