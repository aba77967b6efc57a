package reports

import (
	"bytes"
	"fmt"
	"time"

	"rewind-bknd/internal/models"

	"github.com/xuri/excelize/v2"
)

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// BuildProjectsXLSX exports the project history, one sheet per calculation type
func BuildProjectsXLSX(projects []models.Project) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	wireSheet, turnsSheet := "wire", "turns"
	if err := f.SetSheetName("Sheet1", wireSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(turnsSheet); err != nil {
		return nil, err
	}

	wireHeader := []any{"Name", "Saved", "Power (kW)", "Voltage (V)", "Phases", "Poles", "Efficiency (%)",
		"Power factor", "Current density (A/mm²)", "Service", "Nominal current (A)", "Section (mm²)", "First wire (mm)", "Notes"}
	turnsHeader := []any{"Name", "Saved", "Voltage (V)", "Frequency (Hz)", "Pole pairs", "Core section (cm²)",
		"Induction (T)", "Winding type", "Slots/pole/phase", "Flux (Wb)", "kw", "Turns/phase", "Turns/slot", "Pitch", "Notes"}
	if err := f.SetSheetRow(wireSheet, "A1", &wireHeader); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(turnsSheet, "A1", &turnsHeader); err != nil {
		return nil, err
	}

	wireRow, turnsRow := 2, 2
	for i := range projects {
		p := &projects[i]
		saved := p.CreatedAt.UTC().Format(time.RFC3339)
		switch p.CalculationType {
		case models.CalculationWire:
			in, res, err := p.WireCalculation()
			if err != nil {
				return nil, err
			}
			var firstWire any = ""
			if len(res.RecommendedWires) > 0 {
				firstWire = res.RecommendedWires[0].DiameterMM
			}
			values := []any{p.Name, saved, in.Power, in.Voltage, in.Phases, in.Poles, in.Efficiency, in.PowerFactor,
				in.CurrentDensity, in.ServiceType, res.NominalCurrent, res.TheoreticalSection, firstWire, p.Notes}
			if err := f.SetSheetRow(wireSheet, cell("A", wireRow), &values); err != nil {
				return nil, err
			}
			wireRow++
		case models.CalculationTurns:
			in, res, err := p.TurnsCalculation()
			if err != nil {
				return nil, err
			}
			values := []any{p.Name, saved, in.Voltage, in.Frequency, in.PolePairs, in.CoreSection, in.MagneticInduction,
				in.WindingType, in.SlotsPerPolePerPhase, res.MagneticFlux, res.WindingCoefficient, res.TurnsPerPhase,
				res.TurnsPerSlot, res.WindingPitch, p.Notes}
			if err := f.SetSheetRow(turnsSheet, cell("A", turnsRow), &values); err != nil {
				return nil, err
			}
			turnsRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReferenceXLSX exports the wire and winding factor tables for printing in the workshop
func BuildReferenceXLSX(wires []models.WireSpecification, factors []models.WindingFactor) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	wireSheet, factorSheet := "wires", "winding_factors"
	if err := f.SetSheetName("Sheet1", wireSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(factorSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(wireSheet, "A1", "Diameter (mm)")
	_ = f.SetCellValue(wireSheet, "B1", "Section (mm²)")
	_ = f.SetCellValue(wireSheet, "C1", "Resistance (Ω/m)")
	_ = f.SetCellValue(wireSheet, "D1", "Weight (g/m)")
	for i, w := range wires {
		row := i + 2
		_ = f.SetCellValue(wireSheet, cell("A", row), w.DiameterMM)
		_ = f.SetCellValue(wireSheet, cell("B", row), w.SectionMM2)
		_ = f.SetCellValue(wireSheet, cell("C", row), w.ResistancePerM)
		_ = f.SetCellValue(wireSheet, cell("D", row), w.WeightPerM)
	}

	_ = f.SetCellValue(factorSheet, "A1", "Winding type")
	_ = f.SetCellValue(factorSheet, "B1", "Coefficient (kw)")
	_ = f.SetCellValue(factorSheet, "C1", "Description")
	for i, wf := range factors {
		row := i + 2
		_ = f.SetCellValue(factorSheet, cell("A", row), wf.WindingType)
		_ = f.SetCellValue(factorSheet, cell("B", row), wf.Coefficient)
		_ = f.SetCellValue(factorSheet, cell("C", row), wf.Description)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
