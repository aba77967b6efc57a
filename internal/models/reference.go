package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WireSpecification is one standardized enamelled copper wire gauge
type WireSpecification struct {
	bun.BaseModel `bun:"table:wire_specifications,alias:ws"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id" yaml:"-"`
	DiameterMM     float64   `bun:"diameter_mm,notnull" json:"diameter_mm" yaml:"diameter_mm"`
	SectionMM2     float64   `bun:"section_mm2,notnull" json:"section_mm2" yaml:"section_mm2"`
	ResistancePerM float64   `bun:"resistance_per_m,notnull" json:"resistance_per_m" yaml:"resistance_per_m"` // ohm per metre
	WeightPerM     float64   `bun:"weight_per_m,notnull" json:"weight_per_m" yaml:"weight_per_m"`             // grams per metre
}

// WindingFactor is the winding coefficient (kw) of one winding arrangement
type WindingFactor struct {
	bun.BaseModel `bun:"table:winding_factors,alias:wf"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id" yaml:"-"`
	WindingType string    `bun:"winding_type,notnull,unique" json:"winding_type" yaml:"winding_type"`
	Coefficient float64   `bun:"coefficient,notnull" json:"coefficient" yaml:"coefficient"`
	Description string    `bun:"description,notnull,default:''" json:"description" yaml:"description"`
}

// WireOrder selects the sort column of the wire specification table
type WireOrder string

const (
	WireOrderDiameter WireOrder = "diameter"
	WireOrderSection  WireOrder = "section"
)

// GuidelineRange is one row of a design guideline table
type GuidelineRange struct {
	Label string `json:"label"`
	Range string `json:"range"`
}

// DesignGuideline groups the typical value ranges of one design parameter
type DesignGuideline struct {
	Parameter string           `json:"parameter"`
	Unit      string           `json:"unit"`
	Ranges    []GuidelineRange `json:"ranges"`
}

// SafetyNotice is the disclaimer shown next to every calculation
type SafetyNotice struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Checks      []string `json:"checks"`
	Warning     string   `json:"warning"`
	Disclaimers []string `json:"disclaimers"`
}
