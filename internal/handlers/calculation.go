package handlers

import (
	"net/http"

	"rewind-bknd/internal/models"
	"rewind-bknd/internal/services"

	"go.uber.org/zap"
)

type CalculationHandler struct {
	wire  *services.WireCalculator
	turns *services.TurnsCalculator
	logr  *zap.Logger
}

func NewCalculationHandler(wire *services.WireCalculator, turns *services.TurnsCalculator, logr *zap.Logger) *CalculationHandler {
	return &CalculationHandler{wire: wire, turns: turns, logr: logr}
}

// CalculateWire handles POST /api/v1/calculations/wire
func (h *CalculationHandler) CalculateWire(w http.ResponseWriter, r *http.Request) {
	var in models.WireCalculationInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, h.logr, err, "invalid payload")
		return
	}

	res, err := h.wire.Calculate(r.Context(), in)
	if err != nil {
		writeError(w, h.logr, err, "failed to calculate wire section")
		return
	}
	writeData(w, http.StatusOK, res)
}

// CalculateTurns handles POST /api/v1/calculations/turns
func (h *CalculationHandler) CalculateTurns(w http.ResponseWriter, r *http.Request) {
	var in models.TurnsCalculationInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, h.logr, err, "invalid payload")
		return
	}

	res, err := h.turns.Calculate(r.Context(), in)
	if err != nil {
		writeError(w, h.logr, err, "failed to calculate number of turns")
		return
	}
	writeData(w, http.StatusOK, res)
}

// WireDefaults handles GET /api/v1/calculations/wire/defaults
func (h *CalculationHandler) WireDefaults(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, models.DefaultWireInput())
}

// TurnsDefaults handles GET /api/v1/calculations/turns/defaults
func (h *CalculationHandler) TurnsDefaults(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, models.DefaultTurnsInput())
}

// Safety handles GET /api/v1/safety
func (h *CalculationHandler) Safety(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, services.Safety())
}
