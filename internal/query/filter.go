// Package query holds the pure read-side functions: predicate filtering and
// the archive aggregation. Nothing in here touches storage or mutates its
// inputs' records.
package query

import (
	"strings"

	"todo-manager/internal/models"
)

// Apply returns the tasks matching every present predicate in the filter.
// Per-record evaluation short-circuits on the first failing predicate.
func Apply(tasks []models.Task, filter models.TaskFilter) []models.Task {
	if filter.IsZero() {
		return tasks
	}

	matched := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, filter) {
			matched = append(matched, t)
		}
	}
	return matched
}

func matches(t models.Task, f models.TaskFilter) bool {
	switch f.Status {
	case models.StatusPending:
		if t.Completed {
			return false
		}
	case models.StatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}

	if len(f.Tags) > 0 && !matchesAnyTag(t.Tags, f.Tags) {
		return false
	}

	if f.SearchText != "" && !matchesSearch(t, f.SearchText) {
		return false
	}

	return true
}

// matchesAnyTag reports whether any filter tag is a case-insensitive
// substring of any of the task's tags. The filter tag is the needle.
func matchesAnyTag(taskTags, filterTags []string) bool {
	for _, ft := range filterTags {
		needle := models.NormalizeTag(ft)
		for _, tt := range taskTags {
			if strings.Contains(models.NormalizeTag(tt), needle) {
				return true
			}
		}
	}
	return false
}

// matchesSearch reports whether the term appears in the title, the memo,
// or any tag, case-insensitively.
func matchesSearch(t models.Task, term string) bool {
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Memo), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
