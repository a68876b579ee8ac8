package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/export"
	"github.com/Abraxas-365/deckgen/presentation/export/exportsrv"
)

type ExportWorker struct {
	service *exportsrv.Service
	queue   export.JobQueue
	workers int
}

func NewExportWorker(service *exportsrv.Service, queue export.JobQueue, workers int) *ExportWorker {
	return &ExportWorker{
		service: service,
		queue:   queue,
		workers: workers,
	}
}

func (w *ExportWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d export workers", w.workers)

	// Start delayed job mover
	go w.moveDelayedJobs(ctx)

	// Start worker pool
	for i := 0; i < w.workers; i++ {
		go w.processJobs(ctx, i)
	}
}

func (w *ExportWorker) processJobs(ctx context.Context, workerID int) {
	logx.Infof("Export worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logx.Infof("Export worker %d stopping", workerID)
			return
		default:
			// Dequeue with 5 second timeout
			data, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				logx.Errorf("Export worker %d dequeue error: %v", workerID, err)
				continue
			}

			// Empty result means the dequeue timed out with no jobs
			if len(data) == 0 {
				continue
			}

			var job export.ExportJob
			if err := json.Unmarshal(data, &job); err != nil {
				logx.Errorf("Export worker %d unmarshal error: %v (data: %s)", workerID, err, string(data))
				continue
			}

			logx.Infof("Export worker %d processing job: %s", workerID, job.ID)
			if err := w.service.ProcessExportJob(ctx, &job); err != nil {
				logx.Errorf("Export worker %d job failed: %v", workerID, err)
			}
		}
	}
}

func (w *ExportWorker) moveDelayedJobs(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				logx.Errorf("Failed to move delayed export jobs: %v", err)
			} else if count > 0 {
				logx.Infof("Moved %d delayed export jobs to ready queue", count)
			}
		}
	}
}
