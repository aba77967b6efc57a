// Package seed loads the reference tables (standard wire gauges and winding
// coefficients) from YAML and writes them to the database. The running API
// never mutates these tables; this package is used by cmd/seed and by tests.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"rewind-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var defaultReference []byte

// Data is the content of a reference seed file.
type Data struct {
	Wires          []models.WireSpecification `yaml:"wires"`
	WindingFactors []models.WindingFactor     `yaml:"winding_factors"`
}

// Default returns the reference tables shipped with the binary.
func Default() (*Data, error) {
	return Parse(defaultReference)
}

// Load reads and validates a seed file.
func Load(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates seed YAML.
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the invariants the calculators rely on: positive wire
// properties, section increasing with diameter, unique winding labels and
// coefficients in (0, 1].
func (d *Data) Validate() error {
	for i, w := range d.Wires {
		if w.DiameterMM <= 0 || w.SectionMM2 <= 0 || w.ResistancePerM <= 0 || w.WeightPerM <= 0 {
			return fmt.Errorf("wire %d (%.3f mm): all properties must be positive", i, w.DiameterMM)
		}
		if i == 0 {
			continue
		}
		prev := d.Wires[i-1]
		if w.DiameterMM <= prev.DiameterMM {
			return fmt.Errorf("wire %d: diameters must be listed in increasing order (%.3f after %.3f)", i, w.DiameterMM, prev.DiameterMM)
		}
		if w.SectionMM2 <= prev.SectionMM2 {
			return fmt.Errorf("wire %d: section %.4f does not increase with diameter", i, w.SectionMM2)
		}
	}

	seen := make(map[string]bool, len(d.WindingFactors))
	for i, f := range d.WindingFactors {
		label := strings.TrimSpace(f.WindingType)
		if label == "" {
			return fmt.Errorf("winding factor %d: winding_type is required", i)
		}
		if seen[label] {
			return fmt.Errorf("winding factor %q is listed twice", label)
		}
		seen[label] = true
		if f.Coefficient <= 0 || f.Coefficient > 1 {
			return fmt.Errorf("winding factor %q: coefficient %v outside (0, 1]", label, f.Coefficient)
		}
	}
	return nil
}

// Apply replaces the reference tables with d in a single transaction.
func Apply(ctx context.Context, db *bun.DB, d *Data) error {
	wires := make([]models.WireSpecification, len(d.Wires))
	for i, w := range d.Wires {
		w.ID = uuid.New()
		wires[i] = w
	}
	factors := make([]models.WindingFactor, len(d.WindingFactors))
	for i, f := range d.WindingFactors {
		f.ID = uuid.New()
		f.WindingType = strings.TrimSpace(f.WindingType)
		factors[i] = f
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.WireSpecification)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("clear wire specifications: %w", err)
		}
		if _, err := tx.NewDelete().Model((*models.WindingFactor)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("clear winding factors: %w", err)
		}
		if len(wires) > 0 {
			if _, err := tx.NewInsert().Model(&wires).Exec(ctx); err != nil {
				return fmt.Errorf("insert wire specifications: %w", err)
			}
		}
		if len(factors) > 0 {
			if _, err := tx.NewInsert().Model(&factors).Exec(ctx); err != nil {
				return fmt.Errorf("insert winding factors: %w", err)
			}
		}
		return nil
	})
}

// ApplyIfEmpty loads the embedded tables when the wire table has no rows, so a
// fresh database is usable without running the seed command.
func ApplyIfEmpty(ctx context.Context, db *bun.DB) error {
	n, err := db.NewSelect().Model((*models.WireSpecification)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count wire specifications: %w", err)
	}
	if n > 0 {
		return nil
	}
	d, err := Default()
	if err != nil {
		return err
	}
	return Apply(ctx, db, d)
}
