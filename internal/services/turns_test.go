package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"rewind-bknd/internal/models"
)

var scenarioFactors = []models.WindingFactor{
	{WindingType: "Concentré", Coefficient: 1},
	{WindingType: "Imbriqué double couche", Coefficient: 0.92},
}

func TestTurnsScenarioB(t *testing.T) {
	in := models.TurnsCalculationInput{
		Voltage:              230,
		Frequency:            50,
		PolePairs:            2,
		CoreSection:          50,
		MagneticInduction:    1.2,
		WindingType:          "Imbriqué double couche",
		SlotsPerPolePerPhase: 3,
	}
	res, err := CalculateTurns(in, scenarioFactors)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !relClose(res.MagneticFlux, 0.006, 1e-9) {
		t.Fatalf("flux %v, want 0.006 Wb", res.MagneticFlux)
	}
	if res.WindingCoefficient != 0.92 {
		t.Fatalf("coefficient %v, want 0.92", res.WindingCoefficient)
	}
	if res.TurnsPerPhase != 188 {
		t.Fatalf("turns per phase %d, want 188", res.TurnsPerPhase)
	}
	// 36 slots, 12 per phase: 187.69 / 12 = 15.64
	if res.TurnsPerSlot != 16 {
		t.Fatalf("turns per slot %d, want 16", res.TurnsPerSlot)
	}
	if res.WindingPitch != 9 {
		t.Fatalf("winding pitch %d, want 9", res.WindingPitch)
	}
}

func TestTurnsFormulaProperty(t *testing.T) {
	inputs := []models.TurnsCalculationInput{
		{Voltage: 230, Frequency: 50, PolePairs: 1, CoreSection: 30, MagneticInduction: 0.9, WindingType: "Concentré", SlotsPerPolePerPhase: 2},
		{Voltage: 400, Frequency: 60, PolePairs: 3, CoreSection: 120, MagneticInduction: 1.4, WindingType: "Concentré", SlotsPerPolePerPhase: 4},
		{Voltage: 127, Frequency: 50, PolePairs: 4, CoreSection: 12.5, MagneticInduction: 1.1, WindingType: "unknown", SlotsPerPolePerPhase: 1},
	}
	for _, in := range inputs {
		res, err := CalculateTurns(in, scenarioFactors)
		if err != nil {
			t.Fatalf("calculate %+v: %v", in, err)
		}
		wantFlux := in.MagneticInduction * (in.CoreSection / 10000)
		if !relClose(res.MagneticFlux, wantFlux, 1e-9) {
			t.Fatalf("flux %v, want %v", res.MagneticFlux, wantFlux)
		}
		want := int(math.Round(in.Voltage / (4.44 * in.Frequency * res.MagneticFlux * res.WindingCoefficient)))
		if res.TurnsPerPhase != want {
			t.Fatalf("turns per phase %d, want %d", res.TurnsPerPhase, want)
		}
		if res.WindingPitch != 3*in.SlotsPerPolePerPhase {
			t.Fatalf("pitch %d, want %d", res.WindingPitch, 3*in.SlotsPerPolePerPhase)
		}
	}
}

func TestUnknownWindingTypeUsesDefaultCoefficient(t *testing.T) {
	if got := ResolveWindingCoefficient("Ondulé", scenarioFactors); got != 0.92 {
		t.Fatalf("expected default 0.92, got %v", got)
	}
	if got := ResolveWindingCoefficient("concentré", scenarioFactors); got != DefaultWindingCoefficient {
		t.Fatalf("label match must be exact, got %v", got)
	}
	if got := ResolveWindingCoefficient("Concentré", scenarioFactors); got != 1 {
		t.Fatalf("expected table coefficient 1, got %v", got)
	}
	if got := ResolveWindingCoefficient("Concentré", nil); got != 0.92 {
		t.Fatalf("empty table must fall back to 0.92, got %v", got)
	}
}

func TestRoundingIsHalfAwayFromZero(t *testing.T) {
	cases := map[float64]int{
		2.5:    3,
		3.5:    4,
		187.5:  188,
		187.49: 187,
		0.5:    1,
		15.64:  16,
	}
	for in, want := range cases {
		if got := roundHalfAway(in); got != want {
			t.Fatalf("roundHalfAway(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestTurnsInvalidInput(t *testing.T) {
	base := models.DefaultTurnsInput()
	cases := map[string]func(*models.TurnsCalculationInput){
		"zero frequency":       func(in *models.TurnsCalculationInput) { in.Frequency = 0 },
		"zero core section":    func(in *models.TurnsCalculationInput) { in.CoreSection = 0 },
		"negative induction":   func(in *models.TurnsCalculationInput) { in.MagneticInduction = -1 },
		"zero pole pairs":      func(in *models.TurnsCalculationInput) { in.PolePairs = 0 },
		"zero voltage":         func(in *models.TurnsCalculationInput) { in.Voltage = 0 },
		"zero slots per phase": func(in *models.TurnsCalculationInput) { in.SlotsPerPolePerPhase = 0 },
		"NaN frequency":        func(in *models.TurnsCalculationInput) { in.Frequency = math.NaN() },
		"denormal frequency":   func(in *models.TurnsCalculationInput) { in.Frequency = 1e-320 },
		"turns beyond int32":   func(in *models.TurnsCalculationInput) { in.Voltage = 1e12 },
		"huge pole pairs":      func(in *models.TurnsCalculationInput) { in.PolePairs = 1 << 61 },
		"huge slots per phase": func(in *models.TurnsCalculationInput) { in.SlotsPerPolePerPhase = 1 << 40 },
		"too many slots":       func(in *models.TurnsCalculationInput) { in.PolePairs, in.SlotsPerPolePerPhase = 100, 100 },
		"zero turns per slot":  func(in *models.TurnsCalculationInput) { in.Voltage = 1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			if _, err := CalculateTurns(in, scenarioFactors); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTurnsCalculatorUsesStoredFactors(t *testing.T) {
	calc := NewTurnsCalculator(NewReferenceService(newTestDB(t)))

	res, err := calc.Calculate(context.Background(), models.DefaultTurnsInput())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if res.WindingCoefficient != 0.831 {
		t.Fatalf("expected the seeded coefficient of %q, got %v", models.DefaultTurnsInput().WindingType, res.WindingCoefficient)
	}
}

func TestTurnsReferenceFailureIsNotMaskedByDefault(t *testing.T) {
	calc := NewTurnsCalculator(failingStore{})
	_, err := calc.Calculate(context.Background(), models.DefaultTurnsInput())
	if !errors.Is(err, ErrTransientIO) {
		t.Fatalf("expected ErrTransientIO, got %v", err)
	}
}

func TestTurnsInvalidInputSkipsReferenceRead(t *testing.T) {
	calc := NewTurnsCalculator(failingStore{})
	in := models.DefaultTurnsInput()
	in.Frequency = 0
	if _, err := calc.Calculate(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput before any store access, got %v", err)
	}
}

func TestTurnsCountsArePositive(t *testing.T) {
	// 4.6 V gives about 3.75 turns per phase over 12 slots per phase: 0.31 per slot
	in := models.DefaultTurnsInput()
	in.Voltage = 4.6
	if _, err := CalculateTurns(in, scenarioFactors); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when turns per slot rounds to zero, got %v", err)
	}

	// 9 V gives 0.61 turns per slot, which rounds up to one
	in.Voltage = 9
	res, err := CalculateTurns(in, scenarioFactors)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if res.TurnsPerSlot != 1 || res.TurnsPerPhase < 1 || res.WindingPitch < 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
}
