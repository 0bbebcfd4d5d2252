package services

import (
	"time"

	"todo-manager/internal/cache"
	"todo-manager/internal/models"
)

// Cache keys for the derived read paths. Mutations clear all of them.
const (
	cacheKeyTaskList = "tasks:list"
	cacheKeyArchive  = "tasks:archive"
	cacheKeyTags     = "tasks:tags"

	cacheKeyPattern = "tasks:*"
)

// CachedTaskService decorates a TaskService with read-through caching for
// the unfiltered list, the archive, and the tag index. Filtered lists are
// recomputed every time: the predicate space is unbounded and the scan is
// in-memory anyway.
type CachedTaskService struct {
	inner TaskService
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedTaskService(inner TaskService, c cache.Cache, ttl time.Duration) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: c, ttl: ttl}
}

func (s *CachedTaskService) Create(input models.CreateTaskInput) (models.Task, error) {
	task, err := s.inner.Create(input)
	if err == nil {
		s.invalidate()
	}
	return task, err
}

func (s *CachedTaskService) Update(id string, input models.UpdateTaskInput) (models.Task, error) {
	task, err := s.inner.Update(id, input)
	if err == nil {
		s.invalidate()
	}
	return task, err
}

func (s *CachedTaskService) Delete(id string) error {
	err := s.inner.Delete(id)
	if err == nil {
		s.invalidate()
	}
	return err
}

func (s *CachedTaskService) List(filter models.TaskFilter) ([]models.Task, error) {
	if !filter.IsZero() {
		return s.inner.List(filter)
	}

	var tasks []models.Task
	if err := s.cache.Get(cacheKeyTaskList, &tasks); err == nil {
		return tasks, nil
	}

	tasks, err := s.inner.List(filter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyTaskList, tasks, s.ttl)
	return tasks, nil
}

func (s *CachedTaskService) Archive() ([]models.ArchiveGroup, error) {
	var groups []models.ArchiveGroup
	if err := s.cache.Get(cacheKeyArchive, &groups); err == nil {
		return groups, nil
	}

	groups, err := s.inner.Archive()
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyArchive, groups, s.ttl)
	return groups, nil
}

func (s *CachedTaskService) Tags() ([]string, error) {
	var tags []string
	if err := s.cache.Get(cacheKeyTags, &tags); err == nil {
		return tags, nil
	}

	tags, err := s.inner.Tags()
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyTags, tags, s.ttl)
	return tags, nil
}

func (s *CachedTaskService) invalidate() {
	s.cache.DeletePattern(cacheKeyPattern)
}
