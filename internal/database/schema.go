package database

import (
	"context"
	"fmt"

	"rewind-bknd/internal/models"

	"github.com/uptrace/bun"
)

var tables = []any{
	(*models.WireSpecification)(nil),
	(*models.WindingFactor)(nil),
	(*models.Project)(nil),
	(*models.User)(nil),
	(*models.RefreshToken)(nil),
}

// EnsureSchema creates the application tables and indexes when they are missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		model  any
		name   string
		column string
	}{
		{(*models.WireSpecification)(nil), "idx_wire_specifications_section", "section_mm2"},
		{(*models.Project)(nil), "idx_projects_created_at", "created_at"},
		{(*models.RefreshToken)(nil), "idx_refresh_tokens_user", "user_id"},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
