package service

import (
	"sync"

	"github.com/MKhiriev/go-task-keeper/models"
)

// TaskListView is one observable snapshot of the engine state: the ordered
// task list plus the syncing flag the UI renders a spinner from.
type TaskListView struct {
	Tasks   []models.Task
	Syncing bool
}

// taskState is the in-memory task set of the sync engine plus its observers.
// All reads hand out copies; observers receive full snapshots on a buffered
// channel and lose intermediate snapshots rather than block a mutation.
type taskState struct {
	mu        sync.RWMutex
	tasks     []models.Task
	syncing   bool
	observers map[int]chan TaskListView
	nextID    int
}

func newTaskState() *taskState {
	return &taskState{observers: make(map[int]chan TaskListView)}
}

// Tasks returns a copy of the current task list.
func (s *taskState) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with the given id, if present.
func (s *taskState) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, task := range s.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return models.Task{}, false
}

// Syncing reports whether a synchronisation pass is in flight.
func (s *taskState) Syncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncing
}

// SetSyncing flips the syncing flag and notifies observers on change.
func (s *taskState) SetSyncing(syncing bool) {
	s.mu.Lock()
	if s.syncing == syncing {
		s.mu.Unlock()
		return
	}
	s.syncing = syncing
	s.notifyLocked()
	s.mu.Unlock()
}

// Replace swaps the whole task list.
func (s *taskState) Replace(tasks []models.Task) {
	s.mu.Lock()
	s.tasks = make([]models.Task, len(tasks))
	copy(s.tasks, tasks)
	s.notifyLocked()
	s.mu.Unlock()
}

// Prepend inserts task at the head of the list (newest first).
func (s *taskState) Prepend(task models.Task) {
	s.mu.Lock()
	s.tasks = append([]models.Task{task}, s.tasks...)
	s.notifyLocked()
	s.mu.Unlock()
}

// Upsert replaces the task with the same ID, or prepends it when absent.
func (s *taskState) Upsert(task models.Task) {
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i] = task
			s.notifyLocked()
			s.mu.Unlock()
			return
		}
	}
	s.tasks = append([]models.Task{task}, s.tasks...)
	s.notifyLocked()
	s.mu.Unlock()
}

// Update replaces the task with the same ID in place. Reports whether the
// task was present.
func (s *taskState) Update(task models.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i] = task
			s.notifyLocked()
			return true
		}
	}
	return false
}

// Promote replaces the task carrying oldID with promoted, which holds the
// server-assigned identifier. Reports whether oldID was still present.
func (s *taskState) Promote(oldID string, promoted models.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == oldID {
			s.tasks[i] = promoted
			s.notifyLocked()
			return true
		}
	}
	return false
}

// Remove deletes the task with the given id. Reports whether it was present.
func (s *taskState) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.notifyLocked()
			return true
		}
	}
	return false
}

// Subscribe registers an observer and returns its channel together with an
// idempotent cancel function. The current snapshot is delivered immediately.
func (s *taskState) Subscribe() (<-chan TaskListView, func()) {
	s.mu.Lock()

	id := s.nextID
	s.nextID++

	views := make(chan TaskListView, 8)
	s.observers[id] = views
	views <- s.viewLocked()

	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
			close(views)
		})
	}

	return views, cancel
}

func (s *taskState) viewLocked() TaskListView {
	tasks := make([]models.Task, len(s.tasks))
	copy(tasks, s.tasks)
	return TaskListView{Tasks: tasks, Syncing: s.syncing}
}

func (s *taskState) notifyLocked() {
	view := s.viewLocked()
	for _, views := range s.observers {
		select {
		case views <- view:
		default:
			// наблюдатель отстал — промежуточный снимок можно потерять
		}
	}
}
