package handlers

import (
	"net/http"

	"rewind-bknd/internal/metrics"
	"rewind-bknd/internal/models"
	"rewind-bknd/internal/reports"
	"rewind-bknd/internal/services"

	"go.uber.org/zap"
)

type ReferenceHandler struct {
	ref  services.ReferenceStore
	logr *zap.Logger
}

func NewReferenceHandler(ref services.ReferenceStore, logr *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{ref: ref, logr: logr}
}

// ListWires handles GET /api/v1/reference/wires?order=diameter|section
func (h *ReferenceHandler) ListWires(w http.ResponseWriter, r *http.Request) {
	order := models.WireOrder(r.URL.Query().Get("order"))
	switch order {
	case "":
		order = models.WireOrderDiameter
	case models.WireOrderDiameter, models.WireOrderSection:
	default:
		writeFail(w, http.StatusBadRequest, "order must be diameter or section")
		return
	}

	wires, err := h.ref.ListWireSpecifications(r.Context(), order)
	if err != nil {
		writeError(w, h.logr, err, "failed to retrieve wire specifications")
		return
	}
	writeList(w, wires)
}

// ListWindingFactors handles GET /api/v1/reference/winding-factors
func (h *ReferenceHandler) ListWindingFactors(w http.ResponseWriter, r *http.Request) {
	factors, err := h.ref.ListWindingFactors(r.Context())
	if err != nil {
		writeError(w, h.logr, err, "failed to retrieve winding factors")
		return
	}
	writeList(w, factors)
}

// Guidelines handles GET /api/v1/reference/guidelines
func (h *ReferenceHandler) Guidelines(w http.ResponseWriter, r *http.Request) {
	writeList(w, services.DesignGuidelines())
}

// Export handles GET /api/v1/reference/export.xlsx
func (h *ReferenceHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wires, err := h.ref.ListWireSpecifications(ctx, models.WireOrderDiameter)
	if err != nil {
		metrics.IncExport("reference_xlsx", err)
		writeError(w, h.logr, err, "failed to retrieve wire specifications")
		return
	}
	factors, err := h.ref.ListWindingFactors(ctx)
	if err != nil {
		metrics.IncExport("reference_xlsx", err)
		writeError(w, h.logr, err, "failed to retrieve winding factors")
		return
	}

	out, err := reports.BuildReferenceXLSX(wires, factors)
	metrics.IncExport("reference_xlsx", err)
	if err != nil {
		writeError(w, h.logr, err, "failed to build reference workbook")
		return
	}
	writeFile(w, contentTypeXLSX, "reference-tables.xlsx", out)
}
