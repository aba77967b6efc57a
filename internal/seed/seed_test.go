package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"rewind-bknd/internal/database"
	"rewind-bknd/internal/models"
)

func TestDefaultReferenceIsValid(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("default seed: %v", err)
	}
	if len(d.Wires) < 20 {
		t.Fatalf("expected a full wire table, got %d rows", len(d.Wires))
	}
	if len(d.WindingFactors) == 0 {
		t.Fatalf("expected winding factors")
	}
}

func TestParseRejectsBrokenInvariants(t *testing.T) {
	cases := map[string]string{
		"section not increasing": `
wires:
  - {diameter_mm: 0.5, section_mm2: 0.2, resistance_per_m: 0.08, weight_per_m: 1.7}
  - {diameter_mm: 0.6, section_mm2: 0.1, resistance_per_m: 0.06, weight_per_m: 2.5}
`,
		"coefficient above one": `
winding_factors:
  - {winding_type: "Concentré", coefficient: 1.2, description: ""}
`,
		"duplicate label": `
winding_factors:
  - {winding_type: "Concentré", coefficient: 1, description: ""}
  - {winding_type: "Concentré", coefficient: 0.9, description: ""}
`,
		"negative resistance": `
wires:
  - {diameter_mm: 0.5, section_mm2: 0.2, resistance_per_m: -1, weight_per_m: 1.7}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.yaml")
	doc := "winding_factors:\n  - {winding_type: \"Concentré\", coefficient: 1, description: \"full pitch\"}\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	d, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(d.WindingFactors) != 1 || d.WindingFactors[0].Description != "full pitch" {
		t.Fatalf("unexpected data %+v", d.WindingFactors)
	}
}

func TestApplyReplacesTables(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}

	d, err := Default()
	if err != nil {
		t.Fatalf("default seed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := Apply(ctx, db, d); err != nil {
			t.Fatalf("apply (pass %d): %v", i+1, err)
		}
	}

	wires, err := db.NewSelect().Model((*models.WireSpecification)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count wires: %v", err)
	}
	if wires != len(d.Wires) {
		t.Fatalf("expected %d wires after reseed, got %d", len(d.Wires), wires)
	}
}

func TestApplyIfEmpty(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}

	custom := &Data{
		Wires:          []models.WireSpecification{{DiameterMM: 1, SectionMM2: 0.7854, ResistancePerM: 0.0219, WeightPerM: 6.98}},
		WindingFactors: []models.WindingFactor{{WindingType: "Concentré", Coefficient: 1}},
	}
	if err := ApplyIfEmpty(ctx, db); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := Apply(ctx, db, custom); err != nil {
		t.Fatalf("custom apply: %v", err)
	}
	// a populated table is left alone
	if err := ApplyIfEmpty(ctx, db); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	n, err := db.NewSelect().Model((*models.WireSpecification)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected the custom table to survive, got %d rows", n)
	}
}
