package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/openingstats/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(req models.ImportRequest) error {
	args := m.Called(req)
	return args.Error(0)
}
