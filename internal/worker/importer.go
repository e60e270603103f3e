package worker

import (
	"context"

	"github.com/vytor/openingstats/internal/models"
)

// Importer runs one import. Declared here so the worker package does not depend
// on services.
type Importer interface {
	Import(ctx context.Context, req models.ImportRequest) (*models.ImportRun, error)
}
