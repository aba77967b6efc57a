package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"rewind-bknd/internal/metrics"
	"rewind-bknd/internal/models"
)

const (
	// Standard gauges down to 90% of the theoretical section are still offered.
	wireSectionTolerance = 0.9
	maxRecommendedWires  = 5
)

// WireCalculator sizes the conductor of a winding from the motor nameplate
type WireCalculator struct {
	ref ReferenceStore
}

func NewWireCalculator(ref ReferenceStore) *WireCalculator {
	return &WireCalculator{ref: ref}
}

// Calculate computes nominal current and theoretical section, then looks up the
// candidate standard gauges. The returned result is always complete.
func (c *WireCalculator) Calculate(ctx context.Context, in models.WireCalculationInput) (res *models.WireCalculationResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCalculation(string(models.CalculationWire), err, time.Since(start)) }()

	current, section, err := WireSection(in)
	if err != nil {
		return nil, err
	}

	wires, err := c.ref.FindWiresMinSection(ctx, section*wireSectionTolerance, maxRecommendedWires)
	if err != nil {
		return nil, fmt.Errorf("recommended wires: %w", err)
	}
	if wires == nil {
		wires = []models.WireSpecification{}
	}

	return &models.WireCalculationResult{
		NominalCurrent:     current,
		TheoreticalSection: section,
		RecommendedWires:   wires,
	}, nil
}

// WireSection returns the nominal current (A) and theoretical conductor section (mm²).
func WireSection(in models.WireCalculationInput) (current, section float64, err error) {
	if err := ValidateWireInput(in); err != nil {
		return 0, 0, err
	}
	current = NominalCurrent(in)
	section = current / in.CurrentDensity
	if !isFinite(current) || !isFinite(section) {
		return 0, 0, invalidInput("result out of range (current %v A, section %v mm²); check the input magnitudes", current, section)
	}
	return current, section, nil
}

// NominalCurrent applies I = P / (√3·U·η·cosφ) for three-phase motors and
// I = P / (U·η·cosφ) for single-phase ones. The input must be valid.
func NominalCurrent(in models.WireCalculationInput) float64 {
	denominator := in.Voltage * (in.Efficiency / 100) * in.PowerFactor
	if in.Phases == 3 {
		denominator *= math.Sqrt(3)
	}
	return in.Power * 1000 / denominator
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateWireInput rejects values that would make the formulas divide by zero
// or describe a non-physical motor.
func ValidateWireInput(in models.WireCalculationInput) error {
	for name, v := range map[string]float64{
		"power":          in.Power,
		"voltage":        in.Voltage,
		"efficiency":     in.Efficiency,
		"powerFactor":    in.PowerFactor,
		"currentDensity": in.CurrentDensity,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidInput("%s must be a finite number", name)
		}
	}

	switch {
	case in.Power <= 0:
		return invalidInput("power must be positive")
	case in.Voltage <= 0:
		return invalidInput("voltage must be positive")
	case in.Phases != 1 && in.Phases != 3:
		return invalidInput("phases must be 1 or 3, got %d", in.Phases)
	case in.Poles <= 0 || in.Poles%2 != 0:
		return invalidInput("poles must be a positive even number, got %d", in.Poles)
	case in.Efficiency <= 0 || in.Efficiency > 100:
		return invalidInput("efficiency must be in (0, 100]")
	case in.PowerFactor <= 0 || in.PowerFactor > 1:
		return invalidInput("power factor must be in (0, 1]")
	case in.CurrentDensity <= 0:
		return invalidInput("current density must be positive")
	}
	return nil
}
