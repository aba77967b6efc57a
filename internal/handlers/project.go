package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"rewind-bknd/internal/metrics"
	"rewind-bknd/internal/models"
	"rewind-bknd/internal/reports"
	"rewind-bknd/internal/services"
	"rewind-bknd/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects *services.ProjectService
	wire     *services.WireCalculator
	turns    *services.TurnsCalculator
	logr     *zap.Logger
}

func NewProjectHandler(projects *services.ProjectService, wire *services.WireCalculator, turns *services.TurnsCalculator, logr *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, wire: wire, turns: turns, logr: logr}
}

func (h *ProjectHandler) parseFilter(r *http.Request) (models.ProjectFilter, error) {
	var filter models.ProjectFilter
	for _, v := range utils.ParseQueryList(r.URL.Query(), "type") {
		t := models.CalculationType(strings.ToLower(v))
		if !t.Valid() {
			return filter, fmt.Errorf("%w: unknown calculation type %q", services.ErrInvalidInput, v)
		}
		filter.Types = append(filter.Types, t)
	}
	return filter, nil
}

// projectID parses the {id} path parameter. A malformed id cannot name a
// stored project, so it is reported as not found.
func projectID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("project %q: %w", raw, services.ErrNotFound)
	}
	return id, nil
}

// List handles GET /api/v1/projects?type=wire,turns
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		writeError(w, h.logr, err, "invalid filter")
		return
	}
	projects, err := h.projects.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logr, err, "failed to retrieve projects")
		return
	}
	writeList(w, projects)
}

// Get handles GET /api/v1/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.logr, err, "project not found")
		return
	}
	project, err := h.projects.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logr, err, "failed to retrieve project")
		return
	}
	writeData(w, http.StatusOK, project)
}

// Create handles POST /api/v1/projects with already computed inputs and results
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logr, err, "invalid payload")
		return
	}
	project, err := h.projects.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logr, err, "failed to save project")
		return
	}
	h.logr.Info("project saved", zap.String("id", project.ID.String()), zap.String("type", string(project.CalculationType)))
	writeData(w, http.StatusCreated, project)
}

type saveWireRequest struct {
	Name  string                      `json:"name"`
	Notes string                      `json:"notes"`
	Input models.WireCalculationInput `json:"input"`
}

type saveTurnsRequest struct {
	Name  string                       `json:"name"`
	Notes string                       `json:"notes"`
	Input models.TurnsCalculationInput `json:"input"`
}

// SaveWire handles POST /api/v1/projects/wire: calculates and saves in one step
func (h *ProjectHandler) SaveWire(w http.ResponseWriter, r *http.Request) {
	var req saveWireRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logr, err, "invalid payload")
		return
	}
	res, err := h.wire.Calculate(r.Context(), req.Input)
	if err != nil {
		writeError(w, h.logr, err, "failed to calculate wire section")
		return
	}
	project, err := h.projects.CreateWire(r.Context(), req.Name, req.Notes, req.Input, res)
	if err != nil {
		writeError(w, h.logr, err, "failed to save project")
		return
	}
	writeData(w, http.StatusCreated, project)
}

// SaveTurns handles POST /api/v1/projects/turns
func (h *ProjectHandler) SaveTurns(w http.ResponseWriter, r *http.Request) {
	var req saveTurnsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logr, err, "invalid payload")
		return
	}
	res, err := h.turns.Calculate(r.Context(), req.Input)
	if err != nil {
		writeError(w, h.logr, err, "failed to calculate number of turns")
		return
	}
	project, err := h.projects.CreateTurns(r.Context(), req.Name, req.Notes, req.Input, res)
	if err != nil {
		writeError(w, h.logr, err, "failed to save project")
		return
	}
	writeData(w, http.StatusCreated, project)
}

// Delete handles DELETE /api/v1/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.logr, err, "project not found")
		return
	}
	if err := h.projects.Delete(r.Context(), id); err != nil {
		writeError(w, h.logr, err, "failed to delete project")
		return
	}
	h.logr.Info("project deleted", zap.String("id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// Sheet handles GET /api/v1/projects/{id}/sheet.pdf
func (h *ProjectHandler) Sheet(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, h.logr, err, "project not found")
		return
	}
	project, err := h.projects.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logr, err, "failed to retrieve project")
		return
	}

	out, err := reports.BuildProjectSheetPDF(project, services.Safety())
	metrics.IncExport("project_pdf", err)
	if err != nil {
		writeError(w, h.logr, err, "failed to render project sheet")
		return
	}
	writeFile(w, contentTypePDF, fmt.Sprintf("project-%s.pdf", id), out)
}

// Export handles GET /api/v1/projects/export.xlsx
func (h *ProjectHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		writeError(w, h.logr, err, "invalid filter")
		return
	}
	projects, err := h.projects.List(r.Context(), filter)
	if err != nil {
		metrics.IncExport("projects_xlsx", err)
		writeError(w, h.logr, err, "failed to retrieve projects")
		return
	}

	out, err := reports.BuildProjectsXLSX(projects)
	metrics.IncExport("projects_xlsx", err)
	if err != nil {
		writeError(w, h.logr, err, "failed to build project workbook")
		return
	}
	writeFile(w, contentTypeXLSX, "projects.xlsx", out)
}
