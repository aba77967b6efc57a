package database

import (
	"context"
	"fmt"
	"testing"

	"rewind-bknd/internal/config"
	"rewind-bknd/internal/models"
)

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "oracle"})
	if err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}
	db, err := New(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, db); err != nil {
			t.Fatalf("ensure schema (pass %d): %v", i+1, err)
		}
	}

	count, err := db.NewSelect().Model((*models.Project)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty projects table, got %d rows", count)
	}
}
