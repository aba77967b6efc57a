package models

// Key names follow the payloads already stored in project history and must not change.

// WireCalculationInput holds the nameplate parameters of the wire section calculation
type WireCalculationInput struct {
	Power          float64 `json:"power"`          // kW
	Voltage        float64 `json:"voltage"`        // V
	Phases         int     `json:"phases"`         // 1 or 3
	Poles          int     `json:"poles"`          // positive, even
	Efficiency     float64 `json:"efficiency"`     // percent
	PowerFactor    float64 `json:"powerFactor"`    // cos phi
	CurrentDensity float64 `json:"currentDensity"` // A/mm²
	ServiceType    string  `json:"serviceType"`    // S1, S2, S3; informational
}

type WireCalculationResult struct {
	NominalCurrent     float64             `json:"nominalCurrent"`     // A
	TheoreticalSection float64             `json:"theoreticalSection"` // mm²
	RecommendedWires   []WireSpecification `json:"recommendedWires"`
}

// TurnsCalculationInput holds the magnetic circuit parameters of the turns calculation
type TurnsCalculationInput struct {
	Voltage              float64 `json:"voltage"`           // V per phase
	Frequency            float64 `json:"frequency"`         // Hz
	PolePairs            int     `json:"polePairs"`
	CoreSection          float64 `json:"coreSection"`       // cm²
	MagneticInduction    float64 `json:"magneticInduction"` // T
	WindingType          string  `json:"windingType"`
	SlotsPerPolePerPhase int     `json:"slotsPerPolePerPhase"`
}

type TurnsCalculationResult struct {
	MagneticFlux       float64 `json:"magneticFlux"` // Wb
	WindingCoefficient float64 `json:"windingCoefficient"`
	TurnsPerPhase      int     `json:"turnsPerPhase"`
	TurnsPerSlot       int     `json:"turnsPerSlot"`
	WindingPitch       int     `json:"windingPitch"`
}

// DefaultWireInput returns the form values a new wire calculation starts from
func DefaultWireInput() WireCalculationInput {
	return WireCalculationInput{
		Power:          5.5,
		Voltage:        400,
		Phases:         3,
		Poles:          4,
		Efficiency:     85,
		PowerFactor:    0.85,
		CurrentDensity: 4,
		ServiceType:    "S1",
	}
}

// DefaultTurnsInput returns the form values a new turns calculation starts from
func DefaultTurnsInput() TurnsCalculationInput {
	return TurnsCalculationInput{
		Voltage:              230,
		Frequency:            50,
		PolePairs:            2,
		CoreSection:          50,
		MagneticInduction:    1.2,
		WindingType:          "Distribué 2/3",
		SlotsPerPolePerPhase: 3,
	}
}
