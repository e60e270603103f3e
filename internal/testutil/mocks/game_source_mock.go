package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/openingstats/internal/models"
)

// MockGameSource is a mock implementation of services.GameSource
type MockGameSource struct {
	mock.Mock
	SourceName string
}

func (m *MockGameSource) Name() string { return m.SourceName }

func (m *MockGameSource) FetchGames(ctx context.Context, username string, since *time.Time) ([]models.Game, error) {
	args := m.Called(ctx, username, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Game), args.Error(1)
}
