package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/openingstats/internal/models"
)

// MockGameRepository is a mock implementation of repository.GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) InsertBatch(ctx context.Context, playerID int64, games []models.Game) (int, error) {
	args := m.Called(ctx, playerID, games)
	return args.Int(0), args.Error(1)
}

func (m *MockGameRepository) List(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Game), args.Error(1)
}

func (m *MockGameRepository) Count(ctx context.Context, filter models.GameFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockGameRepository) ExistingIDs(ctx context.Context, playerID int64, source string) (map[string]bool, error) {
	args := m.Called(ctx, playerID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}
