package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"todo-manager/internal/models"
	"todo-manager/internal/query"
	"todo-manager/internal/storage"
	"todo-manager/internal/validation"
)

// Request-shape guards for list filters. These bound the request, not the
// data model.
const (
	MaxSearchTextLength = 1000
	MaxFilterTags       = 50
)

// TaskService is the orchestration layer between callers and the storage
// engine. Failures are *ValidationError, *NotFoundError, or a wrapped
// *storage.Error; the HTTP layer maps those to status codes.
type TaskService interface {
	Create(input models.CreateTaskInput) (models.Task, error)
	Update(id string, input models.UpdateTaskInput) (models.Task, error)
	Delete(id string) error
	List(filter models.TaskFilter) ([]models.Task, error)
	Archive() ([]models.ArchiveGroup, error)
	Tags() ([]string, error)
}

// TaskServiceImpl implements TaskService over a single storage.Store,
// injected at construction.
type TaskServiceImpl struct {
	store *storage.Store
}

func NewTaskService(store *storage.Store) *TaskServiceImpl {
	return &TaskServiceImpl{store: store}
}

// Create validates the input, builds the full record with generated id,
// defaults, and timestamps, and appends it to the store.
func (s *TaskServiceImpl) Create(input models.CreateTaskInput) (models.Task, error) {
	if result := validation.ValidateCreate(input); !result.IsValid {
		return models.Task{}, &ValidationError{Errors: result.Errors}
	}

	now := time.Now().UTC()
	task := models.Task{
		ID:        models.NewTaskID(),
		Title:     strings.TrimSpace(input.Title),
		Priority:  models.PriorityMedium,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	if input.Memo != nil {
		task.Memo = *input.Memo
	}
	if input.Completed != nil && *input.Completed {
		task.Completed = true
		completedAt := now
		task.CompletedAt = &completedAt
	}

	if err := s.store.Add(task); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update merges the present fields of a partial input onto the existing
// record. completedAt is stamped only on the false-to-true transition and
// cleared only on true-to-false; a no-op completion update leaves it alone.
func (s *TaskServiceImpl) Update(id string, input models.UpdateTaskInput) (models.Task, error) {
	if result := validation.ValidateID(id); !result.IsValid {
		return models.Task{}, &ValidationError{Errors: result.Errors}
	}
	if !input.HasFields() {
		return models.Task{}, newValidationError("input", "no valid fields to update")
	}
	if result := validation.ValidateUpdate(input); !result.IsValid {
		return models.Task{}, &ValidationError{Errors: result.Errors}
	}

	tasks, err := s.store.ReadAll()
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}

	var existing *models.Task
	for i := range tasks {
		if tasks[i].ID == id {
			existing = &tasks[i]
			break
		}
	}
	if existing == nil {
		return models.Task{}, &NotFoundError{Resource: "task", ID: id}
	}

	updated := *existing
	now := time.Now().UTC()
	if input.Title != nil {
		updated.Title = strings.TrimSpace(*input.Title)
	}
	if input.Priority != nil {
		updated.Priority = *input.Priority
	}
	if input.Tags != nil {
		updated.Tags = *input.Tags
	}
	if input.Memo != nil {
		updated.Memo = *input.Memo
	}
	if input.Completed != nil && *input.Completed != updated.Completed {
		updated.Completed = *input.Completed
		if updated.Completed {
			completedAt := now
			updated.CompletedAt = &completedAt
		} else {
			updated.CompletedAt = nil
		}
	}
	updated.UpdatedAt = now

	found, err := s.store.Update(id, updated)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	if !found {
		// The record existed a moment ago; losing it between the read
		// and the write is an internal inconsistency, not a user error.
		return models.Task{}, fmt.Errorf("update task %s: %w", id,
			&storage.Error{Kind: storage.KindIO, Path: s.store.Path(),
				Err: fmt.Errorf("record vanished during write")})
	}
	return updated, nil
}

// Delete removes the record, translating the storage layer's boolean into
// the not-found failure.
func (s *TaskServiceImpl) Delete(id string) error {
	if result := validation.ValidateID(id); !result.IsValid {
		return &ValidationError{Errors: result.Errors}
	}

	found, err := s.store.Remove(id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !found {
		return &NotFoundError{Resource: "task", ID: id}
	}
	return nil
}

// List returns all tasks, filtered when any predicate is set. The filter
// shape itself is guarded before any records are touched.
func (s *TaskServiceImpl) List(filter models.TaskFilter) ([]models.Task, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}

	tasks, err := s.store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if filter.IsZero() {
		return tasks, nil
	}
	return query.Apply(tasks, filter), nil
}

// Archive returns the day-bucketed groups of completed tasks.
func (s *TaskServiceImpl) Archive() ([]models.ArchiveGroup, error) {
	tasks, err := s.store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("archive tasks: %w", err)
	}
	return query.Archive(tasks), nil
}

// Tags returns every distinct tag across all records, case-sensitively
// deduplicated and alphabetically sorted.
func (s *TaskServiceImpl) Tags() ([]string, error) {
	tasks, err := s.store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	seen := make(map[string]bool)
	tags := []string{}
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func checkFilter(filter models.TaskFilter) error {
	if len(filter.SearchText) > MaxSearchTextLength {
		return newValidationError("search",
			fmt.Sprintf("search text must be at most %d characters", MaxSearchTextLength))
	}
	if len(filter.Tags) > MaxFilterTags {
		return newValidationError("tags",
			fmt.Sprintf("at most %d filter tags are allowed", MaxFilterTags))
	}
	if filter.Status != "" && filter.Status != models.StatusAll &&
		filter.Status != models.StatusPending && filter.Status != models.StatusCompleted {
		return newValidationError("status", `status must be one of "all", "pending", "completed"`)
	}
	if filter.Priority != "" && !models.IsValidPriority(filter.Priority) {
		return newValidationError("priority", `priority must be one of "high", "medium", "low"`)
	}
	return nil
}
