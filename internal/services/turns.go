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
	// DefaultWindingCoefficient is used when the winding type is not in the factor table.
	DefaultWindingCoefficient = 0.92

	// 4.44 = 2π/√2, the form factor of a sinusoidal EMF
	boucherotConstant = 4.44
	// the slot layout assumes a three-phase winding
	windingPhases = 3
	// no stator has more slots than this
	maxTotalSlots = 10000
)

// TurnsCalculator sizes the winding turn count with the Boucherot relation
type TurnsCalculator struct {
	ref ReferenceStore
}

func NewTurnsCalculator(ref ReferenceStore) *TurnsCalculator {
	return &TurnsCalculator{ref: ref}
}

// Calculate reads the current winding factor table and computes the turns.
// A failed table read is returned as an error; only a successful read that
// lacks the winding type falls back to DefaultWindingCoefficient.
func (c *TurnsCalculator) Calculate(ctx context.Context, in models.TurnsCalculationInput) (res *models.TurnsCalculationResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCalculation(string(models.CalculationTurns), err, time.Since(start)) }()

	if err := ValidateTurnsInput(in); err != nil {
		return nil, err
	}

	factors, err := c.ref.ListWindingFactors(ctx)
	if err != nil {
		return nil, fmt.Errorf("winding factors: %w", err)
	}
	return CalculateTurns(in, factors)
}

// CalculateTurns is the pure part of the turns calculation.
func CalculateTurns(in models.TurnsCalculationInput, factors []models.WindingFactor) (*models.TurnsCalculationResult, error) {
	if err := ValidateTurnsInput(in); err != nil {
		return nil, err
	}

	coreSectionM2 := in.CoreSection / 10000
	flux := in.MagneticInduction * coreSectionM2
	kw := ResolveWindingCoefficient(in.WindingType, factors)
	if kw <= 0 || kw > 1 || math.IsNaN(kw) {
		return nil, invalidInput("winding coefficient %v of %q is outside (0, 1]", kw, in.WindingType)
	}

	turnsPerPhase := in.Voltage / (boucherotConstant * in.Frequency * flux * kw)

	poles := in.PolePairs * 2
	totalSlots := poles * windingPhases * in.SlotsPerPolePerPhase
	slotsPerPhase := float64(totalSlots) / windingPhases
	turnsPerSlot := turnsPerPhase / slotsPerPhase
	pitch := float64(totalSlots) / float64(poles)

	res := &models.TurnsCalculationResult{
		MagneticFlux:       flux,
		WindingCoefficient: kw,
	}
	var err error
	if res.TurnsPerPhase, err = roundCount("turns per phase", turnsPerPhase); err != nil {
		return nil, err
	}
	if res.TurnsPerSlot, err = roundCount("turns per slot", turnsPerSlot); err != nil {
		return nil, err
	}
	if res.WindingPitch, err = roundCount("winding pitch", pitch); err != nil {
		return nil, err
	}
	return res, nil
}

// ResolveWindingCoefficient returns the coefficient of the exact windingType
// label, or DefaultWindingCoefficient when no row matches.
func ResolveWindingCoefficient(windingType string, factors []models.WindingFactor) float64 {
	for _, f := range factors {
		if f.WindingType == windingType {
			return f.Coefficient
		}
	}
	return DefaultWindingCoefficient
}

// ValidateTurnsInput rejects inputs that would divide by zero in the Boucherot relation.
func ValidateTurnsInput(in models.TurnsCalculationInput) error {
	for name, v := range map[string]float64{
		"voltage":           in.Voltage,
		"frequency":         in.Frequency,
		"coreSection":       in.CoreSection,
		"magneticInduction": in.MagneticInduction,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidInput("%s must be a finite number", name)
		}
	}

	switch {
	case in.Voltage <= 0:
		return invalidInput("voltage must be positive")
	case in.Frequency <= 0:
		return invalidInput("frequency must be positive")
	case in.PolePairs <= 0:
		return invalidInput("pole pairs must be positive, got %d", in.PolePairs)
	case in.CoreSection <= 0:
		return invalidInput("core section must be positive")
	case in.MagneticInduction <= 0:
		return invalidInput("magnetic induction must be positive")
	case in.SlotsPerPolePerPhase <= 0:
		return invalidInput("slots per pole per phase must be positive, got %d", in.SlotsPerPolePerPhase)
	case in.SlotsPerPolePerPhase > maxTotalSlots || in.PolePairs > maxTotalSlots/(2*windingPhases*in.SlotsPerPolePerPhase):
		return invalidInput("%d pole pairs with %d slots per pole per phase exceed %d slots",
			in.PolePairs, in.SlotsPerPolePerPhase, maxTotalSlots)
	}
	return nil
}

// roundCount rounds a winding count and rejects counts that cannot be wound:
// non-finite, beyond int32, or rounding below one.
func roundCount(name string, v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt32 {
		return 0, invalidInput("%s is out of range (%v); check the input magnitudes", name, v)
	}
	n := roundHalfAway(v)
	if n < 1 {
		return 0, invalidInput("%s rounds to %d; the voltage is too low for this magnetic circuit", name, n)
	}
	return n, nil
}

// roundHalfAway rounds to the nearest integer, halves away from zero (2.5 -> 3).
func roundHalfAway(v float64) int {
	return int(math.Round(v))
}
