package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"rewind-bknd/internal/metrics"
	"rewind-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProjectService stores saved calculations. Projects are created and deleted,
// never updated.
type ProjectService struct {
	db    *bun.DB
	now   func() time.Time
	guard *submitGuard
}

// NewProjectService creates a project repository. An identical create received
// within dedupWindow of a previous one returns the first project instead of a
// second row; a zero window disables that.
func NewProjectService(db *bun.DB, dedupWindow time.Duration) *ProjectService {
	return &ProjectService{
		db:    db,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		guard: newSubmitGuard(dedupWindow),
	}
}

// Create validates and stores a new project
func (s *ProjectService) Create(ctx context.Context, req models.CreateProjectRequest) (p *models.Project, err error) {
	defer func() { metrics.IncProjectOperation("create", err) }()

	req.Name = strings.TrimSpace(req.Name)
	if err := validateProjectRequest(req); err != nil {
		return nil, err
	}

	return s.guard.do(submissionKey(req), s.now, func(now time.Time) (*models.Project, error) {
		project := &models.Project{
			ID:              uuid.New(),
			Name:            req.Name,
			CalculationType: req.CalculationType,
			InputParameters: compactJSON(req.InputParameters),
			Results:         compactJSON(req.Results),
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := s.db.NewInsert().Model(project).Exec(ctx); err != nil {
			return nil, storageError("create project", err)
		}
		return project, nil
	})
}

// CreateWire saves a wire calculation under name
func (s *ProjectService) CreateWire(ctx context.Context, name, notes string, in models.WireCalculationInput, res *models.WireCalculationResult) (*models.Project, error) {
	return s.createTyped(ctx, name, notes, models.CalculationWire, in, res)
}

// CreateTurns saves a turns calculation under name
func (s *ProjectService) CreateTurns(ctx context.Context, name, notes string, in models.TurnsCalculationInput, res *models.TurnsCalculationResult) (*models.Project, error) {
	return s.createTyped(ctx, name, notes, models.CalculationTurns, in, res)
}

func (s *ProjectService) createTyped(ctx context.Context, name, notes string, calcType models.CalculationType, in, res any) (*models.Project, error) {
	input, err := json.Marshal(in)
	if err != nil {
		return nil, validationError("encode input parameters: %v", err)
	}
	results, err := json.Marshal(res)
	if err != nil {
		return nil, validationError("encode results: %v", err)
	}
	return s.Create(ctx, models.CreateProjectRequest{
		Name:            name,
		CalculationType: calcType,
		InputParameters: input,
		Results:         results,
		Notes:           notes,
	})
}

// List returns saved projects, most recent first
func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter) (projects []models.Project, err error) {
	defer func() { metrics.IncProjectOperation("list", err) }()

	projects = make([]models.Project, 0)
	q := s.db.NewSelect().Model(&projects)
	if len(filter.Types) > 0 {
		q = q.Where("calculation_type IN (?)", bun.In(filter.Types))
	}
	if err := q.OrderExpr("created_at DESC, id ASC").Scan(ctx); err != nil {
		return nil, storageError("list projects", err)
	}
	return projects, nil
}

// Get returns one project or ErrNotFound
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (p *models.Project, err error) {
	defer func() { metrics.IncProjectOperation("get", err) }()

	project := new(models.Project)
	if err := s.db.NewSelect().Model(project).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, storageError("get project", err)
	}
	return project, nil
}

// Delete removes a project. Deleting an id that does not exist returns ErrNotFound.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { metrics.IncProjectOperation("delete", err) }()

	res, err := s.db.NewDelete().
		Model((*models.Project)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return storageError("delete project", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("delete project", err)
	}
	if n == 0 {
		return storageError("delete project", ErrNotFound)
	}
	s.guard.forget(id)
	return nil
}

func validateProjectRequest(req models.CreateProjectRequest) error {
	if req.Name == "" {
		return validationError("project name is required")
	}
	if !req.CalculationType.Valid() {
		return validationError("calculation type must be %q or %q", models.CalculationWire, models.CalculationTurns)
	}
	if isEmptyJSON(req.InputParameters) {
		return validationError("input parameters are required")
	}
	if isEmptyJSON(req.Results) {
		return validationError("results are required")
	}

	var in, res any
	switch req.CalculationType {
	case models.CalculationWire:
		in, res = new(models.WireCalculationInput), new(models.WireCalculationResult)
	case models.CalculationTurns:
		in, res = new(models.TurnsCalculationInput), new(models.TurnsCalculationResult)
	}
	if err := json.Unmarshal(req.InputParameters, in); err != nil {
		return validationError("input parameters do not describe a %s calculation: %v", req.CalculationType, err)
	}
	if err := json.Unmarshal(req.Results, res); err != nil {
		return validationError("results do not describe a %s calculation: %v", req.CalculationType, err)
	}
	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func compactJSON(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func submissionKey(req models.CreateProjectRequest) string {
	h := sha256.New()
	for _, part := range [][]byte{
		[]byte(req.Name),
		[]byte(req.CalculationType),
		compactJSON(req.InputParameters),
		compactJSON(req.Results),
		[]byte(req.Notes),
	} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// submitGuard serializes project creation and collapses repeated identical
// submissions (a double-clicked save button) into the first project.
type submitGuard struct {
	window time.Duration

	mu     sync.Mutex
	recent map[string]recentSubmission
}

type recentSubmission struct {
	project *models.Project
	at      time.Time
}

func newSubmitGuard(window time.Duration) *submitGuard {
	return &submitGuard{window: window, recent: make(map[string]recentSubmission)}
}

func (g *submitGuard) do(key string, clock func() time.Time, create func(now time.Time) (*models.Project, error)) (*models.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := clock()
	if g.window > 0 {
		for k, sub := range g.recent {
			if now.Sub(sub.at) > g.window {
				delete(g.recent, k)
			}
		}
		if sub, ok := g.recent[key]; ok {
			dup := *sub.project
			return &dup, nil
		}
	}

	project, err := create(now)
	if err != nil {
		return nil, err
	}
	if g.window > 0 {
		stored := *project
		g.recent[key] = recentSubmission{project: &stored, at: now}
	}
	return project, nil
}

// forget drops a deleted project so that saving it again creates a new row.
func (g *submitGuard) forget(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k, sub := range g.recent {
		if sub.project.ID == id {
			delete(g.recent, k)
		}
	}
}
