package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CalculationType string

const (
	CalculationWire  CalculationType = "wire"
	CalculationTurns CalculationType = "turns"
)

// Valid reports whether t is one of the known calculation types
func (t CalculationType) Valid() bool {
	return t == CalculationWire || t == CalculationTurns
}

// Label is the human readable name used in exports
func (t CalculationType) Label() string {
	switch t {
	case CalculationWire:
		return "Wire section"
	case CalculationTurns:
		return "Number of turns"
	default:
		return string(t)
	}
}

// Project is a saved calculation: its inputs and results as they were at save time
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID              uuid.UUID       `bun:"id,pk,type:uuid" json:"id"`
	Name            string          `bun:"name,notnull" json:"name"`
	CalculationType CalculationType `bun:"calculation_type,notnull" json:"calculation_type"`
	InputParameters json.RawMessage `bun:"input_parameters,type:jsonb,notnull" json:"input_parameters"`
	Results         json.RawMessage `bun:"results,type:jsonb,notnull" json:"results"`
	Notes           string          `bun:"notes,notnull,default:''" json:"notes"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// CreateProjectRequest represents the request body of a project save
type CreateProjectRequest struct {
	Name            string          `json:"name"`
	CalculationType CalculationType `json:"calculation_type"`
	InputParameters json.RawMessage `json:"input_parameters"`
	Results         json.RawMessage `json:"results"`
	Notes           string          `json:"notes"`
}

// ProjectFilter narrows the project history listing
type ProjectFilter struct {
	Types []CalculationType
}

// WireCalculation decodes the stored payloads of a wire project
func (p *Project) WireCalculation() (*WireCalculationInput, *WireCalculationResult, error) {
	if p.CalculationType != CalculationWire {
		return nil, nil, fmt.Errorf("project %s is a %s calculation", p.ID, p.CalculationType)
	}
	var in WireCalculationInput
	if err := json.Unmarshal(p.InputParameters, &in); err != nil {
		return nil, nil, fmt.Errorf("decode input parameters: %w", err)
	}
	var res WireCalculationResult
	if err := json.Unmarshal(p.Results, &res); err != nil {
		return nil, nil, fmt.Errorf("decode results: %w", err)
	}
	return &in, &res, nil
}

// TurnsCalculation decodes the stored payloads of a turns project
func (p *Project) TurnsCalculation() (*TurnsCalculationInput, *TurnsCalculationResult, error) {
	if p.CalculationType != CalculationTurns {
		return nil, nil, fmt.Errorf("project %s is a %s calculation", p.ID, p.CalculationType)
	}
	var in TurnsCalculationInput
	if err := json.Unmarshal(p.InputParameters, &in); err != nil {
		return nil, nil, fmt.Errorf("decode input parameters: %w", err)
	}
	var res TurnsCalculationResult
	if err := json.Unmarshal(p.Results, &res); err != nil {
		return nil, nil, fmt.Errorf("decode results: %w", err)
	}
	return &in, &res, nil
}
