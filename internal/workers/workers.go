package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/service"
)

// Workers runs a set of background workers in registration order and stops
// them in reverse order.
type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}

func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// monitorWorker adapts [service.ConnectivityMonitor] to the Worker interface.
type monitorWorker struct {
	monitor service.ConnectivityMonitor
}

func NewMonitorWorker(monitor service.ConnectivityMonitor) Worker {
	return &monitorWorker{monitor: monitor}
}

func (w *monitorWorker) Run(ctx context.Context) {
	w.monitor.Start(ctx)
}

func (w *monitorWorker) Stop() {
	w.monitor.Stop()
}

// syncJobWorker adapts [service.ClientSyncJob] to the Worker interface.
type syncJobWorker struct {
	job      service.ClientSyncJob
	interval time.Duration
}

func NewSyncJobWorker(job service.ClientSyncJob, interval time.Duration) Worker {
	return &syncJobWorker{job: job, interval: interval}
}

func (w *syncJobWorker) Run(ctx context.Context) {
	w.job.Start(ctx, w.interval)
}

func (w *syncJobWorker) Stop() {
	w.job.Stop()
}
