package reports

import (
	"bytes"
	"fmt"
	"time"

	"rewind-bknd/internal/models"

	"github.com/jung-kurt/gofpdf"
)

type row struct {
	label string
	value string
}

// BuildProjectSheetPDF renders a one-page workshop sheet for a saved project:
// its inputs, its results and the safety notice.
func BuildProjectSheetPDF(p *models.Project, notice models.SafetyNotice) ([]byte, error) {
	var inputs, results []row
	var wires []models.WireSpecification

	switch p.CalculationType {
	case models.CalculationWire:
		in, res, err := p.WireCalculation()
		if err != nil {
			return nil, err
		}
		inputs = []row{
			{"Power", fmt.Sprintf("%g kW", in.Power)},
			{"Voltage", fmt.Sprintf("%g V", in.Voltage)},
			{"Phases", fmt.Sprintf("%d", in.Phases)},
			{"Poles", fmt.Sprintf("%d", in.Poles)},
			{"Efficiency", fmt.Sprintf("%g %%", in.Efficiency)},
			{"Power factor (cos phi)", fmt.Sprintf("%g", in.PowerFactor)},
			{"Current density", fmt.Sprintf("%g A/mm²", in.CurrentDensity)},
			{"Service type", in.ServiceType},
		}
		results = []row{
			{"Nominal current", fmt.Sprintf("%.2f A", res.NominalCurrent)},
			{"Theoretical section", fmt.Sprintf("%.2f mm²", res.TheoreticalSection)},
		}
		wires = res.RecommendedWires
	case models.CalculationTurns:
		in, res, err := p.TurnsCalculation()
		if err != nil {
			return nil, err
		}
		inputs = []row{
			{"Phase voltage", fmt.Sprintf("%g V", in.Voltage)},
			{"Frequency", fmt.Sprintf("%g Hz", in.Frequency)},
			{"Pole pairs", fmt.Sprintf("%d", in.PolePairs)},
			{"Core section", fmt.Sprintf("%g cm²", in.CoreSection)},
			{"Magnetic induction", fmt.Sprintf("%g T", in.MagneticInduction)},
			{"Winding type", in.WindingType},
			{"Slots per pole per phase", fmt.Sprintf("%d", in.SlotsPerPolePerPhase)},
		}
		results = []row{
			{"Magnetic flux", fmt.Sprintf("%.6f Wb", res.MagneticFlux)},
			{"Winding coefficient", fmt.Sprintf("%.3f", res.WindingCoefficient)},
			{"Turns per phase", fmt.Sprintf("%d", res.TurnsPerPhase)},
			{"Turns per slot", fmt.Sprintf("%d", res.TurnsPerSlot)},
			{"Winding pitch", fmt.Sprintf("%d slots", res.WindingPitch)},
		}
	default:
		return nil, fmt.Errorf("unknown calculation type %q", p.CalculationType)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(p.Name), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(p.Name))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(p.CalculationType.Label()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Saved: %s", p.CreatedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	if p.Notes != "" {
		pdf.MultiCell(0, 5, tr("Notes: "+p.Notes), "", "L", false)
	}
	pdf.Ln(4)

	table := func(title string, rows []row) {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, title)
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		for _, r := range rows {
			pdf.CellFormat(70, 6, tr(r.label), "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 6, tr(r.value), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}
	table("Input parameters", inputs)
	table("Results", results)

	if p.CalculationType == models.CalculationWire {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, "Recommended wires")
		pdf.Ln(8)
		if len(wires) == 0 {
			pdf.SetFont("Arial", "", 10)
			pdf.Cell(0, 6, "No standard wire in the reference table is large enough.")
			pdf.Ln(8)
		} else {
			pdf.SetFont("Arial", "B", 10)
			for _, h := range []string{"Diameter (mm)", "Section (mm²)", "Resistance (Ohm/m)", "Weight (g/m)"} {
				pdf.CellFormat(40, 6, tr(h), "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Arial", "", 10)
			for _, w := range wires {
				pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", w.DiameterMM), "1", 0, "R", false, 0, "")
				pdf.CellFormat(40, 6, fmt.Sprintf("%.4f", w.SectionMM2), "1", 0, "R", false, 0, "")
				pdf.CellFormat(40, 6, fmt.Sprintf("%.5f", w.ResistancePerM), "1", 0, "R", false, 0, "")
				pdf.CellFormat(40, 6, fmt.Sprintf("%.3f", w.WeightPerM), "1", 0, "R", false, 0, "")
				pdf.Ln(-1)
			}
			pdf.Ln(4)
		}
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, tr(notice.Title))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, tr(notice.Summary), "", "L", false)
	for _, c := range notice.Checks {
		pdf.MultiCell(0, 5, tr("- "+c), "", "L", false)
	}
	pdf.MultiCell(0, 5, tr(notice.Warning), "", "L", false)
	for _, d := range notice.Disclaimers {
		pdf.MultiCell(0, 5, tr(d), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
