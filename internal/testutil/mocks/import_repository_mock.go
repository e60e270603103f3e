package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/openingstats/internal/models"
)

// MockImportRepository is a mock implementation of repository.ImportRepository
type MockImportRepository struct {
	mock.Mock
}

func (m *MockImportRepository) Create(ctx context.Context, run models.ImportRun) (*models.ImportRun, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportRun), args.Error(1)
}

func (m *MockImportRepository) Finish(ctx context.Context, run models.ImportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockImportRepository) Get(ctx context.Context, id string) (*models.ImportRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportRun), args.Error(1)
}

func (m *MockImportRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]models.ImportRun, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ImportRun), args.Error(1)
}
