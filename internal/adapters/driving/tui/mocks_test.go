package tui

import (
	"context"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

// MockRunService implements driving.RunService for testing.
type MockRunService struct {
	ListFunc   func(ctx context.Context) ([]domain.MatchRun, error)
	GetFunc    func(ctx context.Context, id string) (*domain.MatchRun, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockRunService) Run(_ context.Context, _ driving.RunRequest) (*domain.MatchRun, error) {
	return nil, nil
}

func (m *MockRunService) List(ctx context.Context) ([]domain.MatchRun, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.MatchRun{}, nil
}

func (m *MockRunService) Get(ctx context.Context, id string) (*domain.MatchRun, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockRunService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
