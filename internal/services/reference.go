package services

import (
	"context"

	"rewind-bknd/internal/models"

	"github.com/uptrace/bun"
)

// ReferenceStore is the read-only view of the reference tables the calculators depend on.
type ReferenceStore interface {
	ListWireSpecifications(ctx context.Context, order models.WireOrder) ([]models.WireSpecification, error)
	FindWiresMinSection(ctx context.Context, minSection float64, limit int) ([]models.WireSpecification, error)
	ListWindingFactors(ctx context.Context) ([]models.WindingFactor, error)
}

// ReferenceService reads the wire and winding factor tables
type ReferenceService struct {
	db *bun.DB
}

func NewReferenceService(db *bun.DB) *ReferenceService {
	return &ReferenceService{db: db}
}

// ListWireSpecifications returns the full wire table sorted by diameter (default) or section
func (s *ReferenceService) ListWireSpecifications(ctx context.Context, order models.WireOrder) ([]models.WireSpecification, error) {
	wires := make([]models.WireSpecification, 0)
	q := s.db.NewSelect().Model(&wires)
	if order == models.WireOrderSection {
		q = q.OrderExpr("section_mm2 ASC, diameter_mm ASC")
	} else {
		q = q.OrderExpr("diameter_mm ASC, section_mm2 ASC")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storageError("list wire specifications", err)
	}
	return wires, nil
}

// FindWiresMinSection returns up to limit wires whose section is at least minSection, smallest first
func (s *ReferenceService) FindWiresMinSection(ctx context.Context, minSection float64, limit int) ([]models.WireSpecification, error) {
	wires := make([]models.WireSpecification, 0, limit)
	q := s.db.NewSelect().
		Model(&wires).
		Where("section_mm2 >= ?", minSection).
		OrderExpr("section_mm2 ASC, diameter_mm ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storageError("find wires by section", err)
	}
	return wires, nil
}

// ListWindingFactors returns all winding factors sorted by winding type
func (s *ReferenceService) ListWindingFactors(ctx context.Context) ([]models.WindingFactor, error) {
	factors := make([]models.WindingFactor, 0)
	err := s.db.NewSelect().
		Model(&factors).
		OrderExpr("winding_type ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageError("list winding factors", err)
	}
	return factors, nil
}
