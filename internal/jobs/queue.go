package jobs

import (
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/worker"
)

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueImport(req models.ImportRequest) error
}

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	importPool *worker.Pool
	importer   worker.Importer
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, importer worker.Importer) JobQueue {
	return &WorkerQueue{importPool: importPool, importer: importer}
}

func (q *WorkerQueue) EnqueueImport(req models.ImportRequest) error {
	return q.importPool.Submit(&worker.ImportGamesJob{
		Importer: q.importer,
		Request:  req,
	})
}
