package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"rewind-bknd/internal/models"
	"rewind-bknd/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type fakeStore struct {
	wires   []models.WireSpecification
	factors []models.WindingFactor
	err     error
	calls   int
}

func (f *fakeStore) ListWireSpecifications(ctx context.Context, order models.WireOrder) ([]models.WireSpecification, error) {
	f.calls++
	return f.wires, f.err
}

func (f *fakeStore) FindWiresMinSection(ctx context.Context, minSection float64, limit int) ([]models.WireSpecification, error) {
	f.calls++
	return nil, errors.New("cache must not delegate filtered lookups")
}

func (f *fakeStore) ListWindingFactors(ctx context.Context) ([]models.WindingFactor, error) {
	f.calls++
	return f.factors, f.err
}

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func wireRows(sections ...float64) []models.WireSpecification {
	rows := make([]models.WireSpecification, 0, len(sections))
	for _, s := range sections {
		rows = append(rows, models.WireSpecification{SectionMM2: s})
	}
	return rows
}

func TestFindWiresMinSectionFallsBackToStore(t *testing.T) {
	store := &fakeStore{wires: wireRows(0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0)}
	c := NewReferenceCache(store, unreachableClient(t), time.Minute, zap.NewNop())

	got, err := c.FindWiresMinSection(context.Background(), 1.2, 5)
	if err != nil {
		t.Fatalf("expected fallback to store, got %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 wires, got %d", len(got))
	}
	if got[0].SectionMM2 != 1.5 || got[4].SectionMM2 != 3.5 {
		t.Fatalf("unexpected selection %v", got)
	}
	if store.calls != 1 {
		t.Fatalf("expected a single store read, got %d", store.calls)
	}
}

func TestListWindingFactorsFallsBackToStore(t *testing.T) {
	store := &fakeStore{factors: []models.WindingFactor{{WindingType: "Concentré", Coefficient: 1}}}
	c := NewReferenceCache(store, unreachableClient(t), time.Minute, zap.NewNop())

	got, err := c.ListWindingFactors(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].WindingType != "Concentré" {
		t.Fatalf("unexpected factors %v", got)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	storeErr := errors.Join(services.ErrTransientIO, errors.New("connection reset"))
	store := &fakeStore{err: storeErr}
	c := NewReferenceCache(store, unreachableClient(t), time.Minute, zap.NewNop())

	_, err := c.ListWindingFactors(context.Background())
	if !errors.Is(err, services.ErrTransientIO) {
		t.Fatalf("expected ErrTransientIO, got %v", err)
	}
}

func TestInvalidateReportsRedisFailure(t *testing.T) {
	c := NewReferenceCache(&fakeStore{}, unreachableClient(t), time.Minute, zap.NewNop())
	if err := c.Invalidate(context.Background()); err == nil {
		t.Fatalf("expected invalidate error against unreachable redis")
	}
}
