// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
)

// taskSyncService is the concrete implementation of [TaskSyncService].
//
// Write path: every local edit is applied to the in-memory state first, then
// pushed to the server. When the push fails with [adapter.ErrOffline] the
// edit is recorded in the durable mutation queue instead, and the in-memory
// state keeps the optimistic result. The durable mirror is rewritten after
// every state change, so a restart while offline loses nothing.
//
// Replay path: DrainQueue walks the queue in enqueue order, replays each
// mutation, promotes temporary identifiers to the server-assigned ones, wipes
// the queue and reconciles by refetching the authoritative list.
type taskSyncService struct {
	localStore    *store.ClientStorages
	adapter       adapter.ServerAdapter
	state         *taskState
	uuidGenerator *utils.UUIDGenerator

	syncDepth int32

	mu           sync.Mutex
	userID       int64
	draining     bool
	pendingDrain bool

	logger *logger.Logger
}

// NewTaskSyncService constructs a [TaskSyncService] wired to the given local
// storages and server adapter. The engine is inert until SetUser is called.
func NewTaskSyncService(localStore *store.ClientStorages, serverAdapter adapter.ServerAdapter, logger *logger.Logger) TaskSyncService {
	return &taskSyncService{
		localStore:    localStore,
		adapter:       serverAdapter,
		state:         newTaskState(),
		uuidGenerator: utils.NewUUIDGenerator(),
		logger:        logger,
	}
}

// SetUser implements [TaskSyncService].
func (s *taskSyncService) SetUser(userID int64) {
	s.mu.Lock()
	s.userID = userID
	s.pendingDrain = false
	s.mu.Unlock()

	s.state.Replace(nil)
}

func (s *taskSyncService) currentUser() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Tasks implements [TaskSyncService].
func (s *taskSyncService) Tasks() []models.Task {
	return s.state.Tasks()
}

// Syncing implements [TaskSyncService].
func (s *taskSyncService) Syncing() bool {
	return s.state.Syncing()
}

// Subscribe implements [TaskSyncService].
func (s *taskSyncService) Subscribe() (<-chan TaskListView, func()) {
	return s.state.Subscribe()
}

// Load implements [TaskSyncService]. Online it replaces the in-memory state
// with the server's list and rewrites the mirror; offline it falls back to
// the mirror, which already contains every optimistic edit.
func (s *taskSyncService) Load(ctx context.Context) ([]models.Task, error) {
	log := logger.FromContext(ctx)
	userID := s.currentUser()

	s.beginSync()
	defer s.endSync()

	tasks, err := s.adapter.FetchAll(ctx)
	if err != nil {
		if !errors.Is(err, adapter.ErrOffline) {
			return nil, mapAdapterError(err)
		}

		log.Debug().Int64("user_id", userID).Msg("server unreachable, loading tasks from mirror")

		mirrored, mirrorErr := s.localStore.TaskMirror.LoadSnapshot(ctx, userID)
		if mirrorErr != nil {
			return nil, fmt.Errorf("load mirror snapshot: %w", mirrorErr)
		}

		s.state.Replace(mirrored)
		return mirrored, nil
	}

	s.state.Replace(tasks)
	s.saveMirror(ctx, userID)

	return tasks, nil
}

// Add implements [TaskSyncService].
//
// Returns ErrEmptyTitle when the title is blank after trimming. Offline, the
// returned task carries a temporary identifier that DrainQueue will later
// promote.
func (s *taskSyncService) Add(ctx context.Context, title string) (models.Task, error) {
	log := logger.FromContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	userID := s.currentUser()

	task, err := s.adapter.CreateTask(ctx, models.TaskDraft{Title: title})
	if err == nil {
		// серверное эхо могло прийти по SSE раньше, чем вернулся ответ —
		// Upsert не плодит вторую копию того же id
		s.state.Upsert(task)
		s.saveMirror(ctx, userID)
		return task, nil
	}
	if !errors.Is(err, adapter.ErrOffline) {
		return models.Task{}, mapAdapterError(err)
	}

	// offline: показываем задачу сразу под временным id
	now := time.Now().UTC()
	temp := models.Task{
		ID:        models.TempIDPrefix + s.uuidGenerator.Generate(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.state.Prepend(temp)

	mutation := models.Mutation{
		Kind:       models.MutationCreate,
		TempID:     temp.ID,
		Title:      title,
		EnqueuedAt: now,
	}
	if _, queueErr := s.localStore.MutationQueue.Enqueue(ctx, userID, mutation); queueErr != nil {
		// без записи в очереди оптимистичная задача никогда не доедет до
		// сервера — откатываем её и с экрана
		s.state.Remove(temp.ID)
		log.Err(queueErr).Str("temp_id", temp.ID).Msg("failed to enqueue create mutation")
		return models.Task{}, fmt.Errorf("enqueue create: %w", queueErr)
	}

	s.saveMirror(ctx, userID)

	return temp, nil
}

// Update implements [TaskSyncService].
//
// An update to a still-temporary task never produces its own queue entry: the
// patch is folded into the queued create, so the server later sees a single
// create carrying the final field values.
func (s *taskSyncService) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	log := logger.FromContext(ctx)

	if patch.IsEmpty() {
		return models.Task{}, ErrEmptyPatch
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Task{}, ErrEmptyTitle
	}

	userID := s.currentUser()

	task, ok := s.state.Get(id)
	if !ok {
		return models.Task{}, store.ErrTaskNotFound
	}

	if models.IsTempID(id) {
		now := time.Now().UTC()
		patch.UpdatedAt = &now

		updated := patch.ApplyTo(task)
		s.state.Update(updated)

		amended, amendErr := s.localStore.MutationQueue.AmendCreate(ctx, userID, id, patch)
		if amendErr != nil {
			return models.Task{}, fmt.Errorf("amend queued create: %w", amendErr)
		}
		if !amended {
			log.Warn().Str("temp_id", id).Msg("no queued create to amend, edit kept in memory only")
		}

		s.saveMirror(ctx, userID)
		return updated, nil
	}

	updated, err := s.adapter.UpdateTask(ctx, id, patch)
	if err == nil {
		s.state.Update(updated)
		s.saveMirror(ctx, userID)
		return updated, nil
	}
	if !errors.Is(err, adapter.ErrOffline) {
		return models.Task{}, mapAdapterError(err)
	}

	// offline: применяем локально и ставим мутацию в очередь
	now := time.Now().UTC()
	patch.UpdatedAt = &now

	local := patch.ApplyTo(task)
	s.state.Update(local)

	mutation := models.Mutation{
		Kind:       models.MutationUpdate,
		ID:         id,
		Payload:    patch,
		EnqueuedAt: now,
	}
	if _, queueErr := s.localStore.MutationQueue.Enqueue(ctx, userID, mutation); queueErr != nil {
		log.Err(queueErr).Str("id", id).Msg("failed to enqueue update mutation")
		return models.Task{}, fmt.Errorf("enqueue update: %w", queueErr)
	}

	s.saveMirror(ctx, userID)

	return local, nil
}

// Delete implements [TaskSyncService].
//
// Deleting a still-temporary task voids its queued create: the server never
// learns the task existed.
func (s *taskSyncService) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	userID := s.currentUser()

	if _, ok := s.state.Get(id); !ok {
		return store.ErrTaskNotFound
	}

	if models.IsTempID(id) {
		s.state.Remove(id)

		dropped, dropErr := s.localStore.MutationQueue.DropCreate(ctx, userID, id)
		if dropErr != nil {
			return fmt.Errorf("drop queued create: %w", dropErr)
		}
		if !dropped {
			log.Warn().Str("temp_id", id).Msg("no queued create to drop")
		}

		s.saveMirror(ctx, userID)
		return nil
	}

	err := s.adapter.DeleteTask(ctx, id)
	if err == nil {
		s.state.Remove(id)
		s.saveMirror(ctx, userID)
		return nil
	}
	if !errors.Is(err, adapter.ErrOffline) {
		return mapAdapterError(err)
	}

	// offline: убираем локально и ставим мутацию в очередь
	now := time.Now().UTC()

	s.state.Remove(id)

	mutation := models.Mutation{
		Kind:       models.MutationDelete,
		ID:         id,
		EnqueuedAt: now,
	}
	if _, queueErr := s.localStore.MutationQueue.Enqueue(ctx, userID, mutation); queueErr != nil {
		log.Err(queueErr).Str("id", id).Msg("failed to enqueue delete mutation")
		return fmt.Errorf("enqueue delete: %w", queueErr)
	}

	s.saveMirror(ctx, userID)

	return nil
}

// ToggleComplete implements [TaskSyncService].
//
// The target state is explicit rather than derived from the current one, so
// a click against a stale view cannot silently flip the flag back.
func (s *taskSyncService) ToggleComplete(ctx context.Context, id string, completed bool) (models.Task, error) {
	return s.Update(ctx, id, models.TaskPatch{Completed: &completed})
}

// DrainQueue implements [TaskSyncService].
//
// Only one drain runs at a time. A call that arrives while a drain is in
// flight sets a flag and returns immediately; the running drain notices the
// flag and performs exactly one follow-up pass, so bursts of connectivity
// events collapse into at most two passes.
func (s *taskSyncService) DrainQueue(ctx context.Context) error {
	s.mu.Lock()
	if s.draining {
		s.pendingDrain = true
		s.mu.Unlock()
		return nil
	}
	s.draining = true
	s.mu.Unlock()

	s.beginSync()
	defer s.endSync()

	var err error
	for {
		err = s.drainOnce(ctx)

		s.mu.Lock()
		if !s.pendingDrain {
			s.draining = false
			s.mu.Unlock()
			return err
		}
		s.pendingDrain = false
		s.mu.Unlock()
	}
}

// drainOnce performs a single replay pass: peek the queue, replay every
// mutation in order, clear the queue, reconcile with a refetch.
//
// Each entry is dequeued as soon as its replay settles, so aborting the pass
// never re-sends a mutation the server already accepted. A server-side
// rejection of one mutation does not stop the pass — the item is logged and
// skipped. Losing connectivity mid-pass does stop it, keeping the entries
// that have not reached the server yet for the next drain.
func (s *taskSyncService) drainOnce(ctx context.Context) error {
	log := logger.FromContext(ctx)
	userID := s.currentUser()

	pending, err := s.localStore.MutationQueue.PeekAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("peek mutation queue: %w", err)
	}

	if len(pending) == 0 {
		_, err = s.Load(ctx)
		return err
	}

	log.Info().Int64("user_id", userID).Int("pending", len(pending)).Msg("replaying queued mutations")

	for _, mutation := range pending {
		replayErr := s.replay(ctx, mutation)
		if replayErr != nil {
			if errors.Is(replayErr, adapter.ErrOffline) {
				return fmt.Errorf("connectivity lost during replay: %w", replayErr)
			}

			// одна отвергнутая мутация не срывает весь проход
			log.Warn().Err(replayErr).
				Int64("seq", mutation.Seq).
				Str("kind", string(mutation.Kind)).
				Msg("mutation rejected by server, skipping")
		}

		// доставлено или отвергнуто — повторять эту запись нельзя
		if removeErr := s.localStore.MutationQueue.Remove(ctx, userID, mutation.Seq); removeErr != nil {
			log.Err(removeErr).Int64("seq", mutation.Seq).Msg("failed to dequeue replayed mutation")
		}
	}

	// подчищаем то, что мог не убрать поштучный Remove
	if err = s.localStore.MutationQueue.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear mutation queue: %w", err)
	}

	_, err = s.Load(ctx)
	return err
}

// replay pushes one queued mutation to the server.
func (s *taskSyncService) replay(ctx context.Context, mutation models.Mutation) error {
	switch mutation.Kind {
	case models.MutationCreate:
		draft := models.TaskDraft{Title: mutation.Title}
		if mutation.Payload.Completed != nil {
			draft.Completed = *mutation.Payload.Completed
		}

		task, err := s.adapter.CreateTask(ctx, draft)
		if err != nil {
			return err
		}

		// если временная задача ещё на экране — подменяем id на серверный
		s.state.Promote(mutation.TempID, task)
		return nil

	case models.MutationUpdate:
		if models.IsTempID(mutation.ID) {
			// соответствующий create так и не дошёл до сервера
			return nil
		}

		_, err := s.adapter.UpdateTask(ctx, mutation.ID, mutation.Payload)
		return err

	case models.MutationDelete:
		err := s.adapter.DeleteTask(ctx, mutation.ID)
		if errors.Is(err, adapter.ErrNotFound) {
			// задача уже удалена — цель достигнута
			return nil
		}
		return err

	default:
		return fmt.Errorf("unknown mutation kind %q", mutation.Kind)
	}
}

// ApplyRemoteEvent implements [TaskSyncService].
func (s *taskSyncService) ApplyRemoteEvent(ctx context.Context, event models.TaskEvent) {
	userID := s.currentUser()

	switch event.Kind {
	case models.EventInsert, models.EventUpdate:
		if event.Task.ID == "" {
			return
		}
		s.state.Upsert(event.Task)
	case models.EventDelete:
		if event.TaskID == "" {
			return
		}
		s.state.Remove(event.TaskID)
	default:
		return
	}

	s.saveMirror(ctx, userID)
}

// saveMirror rewrites the durable mirror from the in-memory state. Mirror
// write failures are logged, not propagated: the in-memory state is already
// correct and the next successful write repairs the mirror.
func (s *taskSyncService) saveMirror(ctx context.Context, userID int64) {
	if err := s.localStore.TaskMirror.SaveSnapshot(ctx, userID, s.state.Tasks()); err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("failed to persist task mirror")
	}
}

func (s *taskSyncService) beginSync() {
	if atomic.AddInt32(&s.syncDepth, 1) == 1 {
		s.state.SetSyncing(true)
	}
}

func (s *taskSyncService) endSync() {
	if atomic.AddInt32(&s.syncDepth, -1) == 0 {
		s.state.SetSyncing(false)
	}
}
