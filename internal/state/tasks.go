package state

import (
	"slices"
	"sync"

	"scrumboard/internal/service"
)

// TaskEvent is a completed action applied to Tasks.
// Implemented only by the event types in this package.
type TaskEvent interface {
	applyTasks(s *Tasks)
}

// TasksFetched carries the complete task collection.
type TasksFetched struct {
	Tasks []service.Task
}

// UsersFetched carries the user directory.
type UsersFetched struct {
	Users []service.User
}

// CategoriesFetched carries the category directory.
type CategoriesFetched struct {
	Categories []service.Category
}

// CategoryCreated carries a newly created category.
type CategoryCreated struct {
	Category service.Category
}

// TaskCreated carries a newly created task.
type TaskCreated struct {
	Task service.Task
}

// TaskUpdated carries an updated task.
type TaskUpdated struct {
	Task service.Task
}

// TaskDeleted carries the id of a deleted task.
type TaskDeleted struct {
	ID int
}

// TaskEdited replaces the draft. The empty draft closes the edit session.
type TaskEdited struct {
	Draft service.TaskDraft
}

// TaskSelected replaces the selected task. The zero task clears the selection.
type TaskSelected struct {
	Task service.Task
}

// Tasks is the task board store.
type Tasks struct {
	mu         sync.RWMutex
	tasks      []service.Task
	edited     service.TaskDraft
	selected   service.Task
	users      []service.User
	categories []service.Category
}

// NewTasks returns the start-of-process task state: empty collections,
// empty draft and no selection.
func NewTasks() *Tasks {
	return &Tasks{}
}

// Apply applies ev.
func (s *Tasks) Apply(ev TaskEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.applyTasks(s)
}

func (e TasksFetched) applyTasks(s *Tasks) {
	s.tasks = slices.Clone(e.Tasks)
}

func (e UsersFetched) applyTasks(s *Tasks) {
	s.users = slices.Clone(e.Users)
}

func (e CategoriesFetched) applyTasks(s *Tasks) {
	s.categories = slices.Clone(e.Categories)
}

func (e CategoryCreated) applyTasks(s *Tasks) {
	s.categories = append(s.categories, e.Category)
}

func (e TaskCreated) applyTasks(s *Tasks) {
	rest := slices.DeleteFunc(s.tasks, func(t service.Task) bool { return t.ID == e.Task.ID })
	s.tasks = append([]service.Task{e.Task}, rest...)
	s.edited = service.TaskDraft{}
}

func (e TaskUpdated) applyTasks(s *Tasks) {
	for i := range s.tasks {
		if s.tasks[i].ID == e.Task.ID {
			s.tasks[i] = e.Task
		}
	}
	s.edited = service.TaskDraft{}
	s.selected = service.Task{}
}

func (e TaskDeleted) applyTasks(s *Tasks) {
	s.tasks = slices.DeleteFunc(s.tasks, func(t service.Task) bool { return t.ID == e.ID })
	s.edited = service.TaskDraft{}
	s.selected = service.Task{}
}

func (e TaskEdited) applyTasks(s *Tasks) {
	s.edited = e.Draft
}

func (e TaskSelected) applyTasks(s *Tasks) {
	s.selected = e.Task
}

// Tasks returns a copy of the task collection.
func (s *Tasks) Tasks() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Task returns the task with the given id.
func (s *Tasks) Task(id int) (service.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
	if i < 0 {
		return service.Task{}, false
	}
	return s.tasks[i], true
}

// EditedTask returns the current draft.
func (s *Tasks) EditedTask() service.TaskDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edited
}

// SelectedTask returns the task shown in the detail view.
func (s *Tasks) SelectedTask() service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Users returns a copy of the user directory.
func (s *Tasks) Users() []service.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// Categories returns a copy of the category directory in arrival order.
func (s *Tasks) Categories() []service.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Editing reports whether an edit session is open (the draft has a status).
func (s *Tasks) Editing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edited.Status != ""
}

// HasSelection reports whether a task is selected for the detail view.
func (s *Tasks) HasSelection() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected.Task != ""
}

// DraftIsNew reports whether submitting the draft creates a task.
func (s *Tasks) DraftIsNew() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edited.IsNew()
}

// DraftSubmittable reports whether the draft has every required text field.
func (s *Tasks) DraftSubmittable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edited.Complete()
}
