// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spySyncService считает вызовы Load; остальные методы — заглушки.
type spySyncService struct {
	loads atomic.Int64
}

func (s *spySyncService) SetUser(_ int64) {}

func (s *spySyncService) Load(_ context.Context) ([]models.Task, error) {
	s.loads.Add(1)
	return nil, nil
}

func (s *spySyncService) Tasks() []models.Task { return nil }
func (s *spySyncService) Syncing() bool        { return false }

func (s *spySyncService) Add(_ context.Context, _ string) (models.Task, error) {
	return models.Task{}, nil
}

func (s *spySyncService) Update(_ context.Context, _ string, _ models.TaskPatch) (models.Task, error) {
	return models.Task{}, nil
}

func (s *spySyncService) Delete(_ context.Context, _ string) error { return nil }

func (s *spySyncService) ToggleComplete(_ context.Context, _ string, _ bool) (models.Task, error) {
	return models.Task{}, nil
}

func (s *spySyncService) DrainQueue(_ context.Context) error { return nil }

func (s *spySyncService) ApplyRemoteEvent(_ context.Context, _ models.TaskEvent) {}

func (s *spySyncService) Subscribe() (<-chan TaskListView, func()) {
	views := make(chan TaskListView)
	close(views)
	return views, func() {}
}

// ── Start / Stop ─────────────────────────────────────────────────────────────

func TestClientSyncJob_Start_ReconcilesOnTicker(t *testing.T) {
	spy := &spySyncService{}
	job := NewClientSyncJob(spy)

	// интервал 10ms — за 55ms должно быть несколько тиков
	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.loads.Load()
	assert.GreaterOrEqual(t, got, int64(3), "Load должен быть вызван несколько раз, вызвано: %d", got)
}

func TestClientSyncJob_Stop_StopsGoroutine(t *testing.T) {
	spy := &spySyncService{}
	job := NewClientSyncJob(spy)

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	job.Stop()

	after := spy.loads.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, spy.loads.Load())
}

func TestClientSyncJob_Restart_StopsPreviousJob(t *testing.T) {
	spy := &spySyncService{}
	job := NewClientSyncJob(spy)
	ctx := context.Background()

	job.Start(ctx, 10*time.Millisecond)
	job.Start(ctx, 10*time.Millisecond) // перезапуск не плодит горутин
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	// после Stop ничего не тикает
	after := spy.loads.Load()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, after, spy.loads.Load())
}

func TestClientSyncJob_StopWithoutStart(t *testing.T) {
	job := NewClientSyncJob(&spySyncService{})
	job.Stop() // no-op
}

func TestClientSyncJob_ContextCancelStopsJob(t *testing.T) {
	spy := &spySyncService{}
	job := NewClientSyncJob(spy)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	after := spy.loads.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, spy.loads.Load())
}
