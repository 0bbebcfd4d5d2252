package models

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// Task priorities. Every persisted task carries exactly one of these.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task is the persisted task record. The JSON field names are the on-disk
// format; the backing file is a JSON array of these objects.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	Memo        string     `json:"memo"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// NewTaskID generates a fresh opaque task identifier.
func NewTaskID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// IsValidPriority reports whether p is a member of the priority enum.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// CreateTaskInput is the caller-supplied payload for creating a task.
// Title is required; everything else is optional and defaulted by the
// service after validation.
type CreateTaskInput struct {
	Title     string   `json:"title"`
	Completed *bool    `json:"completed"`
	Priority  *string  `json:"priority"`
	Tags      []string `json:"tags"`
	Memo      *string  `json:"memo"`
}

// UpdateTaskInput is a partial update. A nil field means "leave unchanged";
// a non-nil field is validated and merged onto the existing record. The
// pointer wrapping keeps "absent" and "zero value" distinguishable.
type UpdateTaskInput struct {
	Title     *string   `json:"title"`
	Completed *bool     `json:"completed"`
	Priority  *string   `json:"priority"`
	Tags      *[]string `json:"tags"`
	Memo      *string   `json:"memo"`
}

// HasFields reports whether at least one updatable field is present.
func (in UpdateTaskInput) HasFields() bool {
	return in.Title != nil || in.Completed != nil || in.Priority != nil ||
		in.Tags != nil || in.Memo != nil
}

// Filter statuses.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// TaskFilter holds the optional list predicates. Zero values mean the
// predicate is not applied; present predicates are ANDed together.
type TaskFilter struct {
	Status     string   `form:"status"`
	Priority   string   `form:"priority"`
	Tags       []string `form:"tags"`
	SearchText string   `form:"search"`
}

// IsZero reports whether no predicate is set.
func (f TaskFilter) IsZero() bool {
	return f.Status == "" && f.Priority == "" && len(f.Tags) == 0 && f.SearchText == ""
}

// ArchiveGroup is one calendar day of completed tasks, derived on read and
// never persisted.
type ArchiveGroup struct {
	Date  string `json:"date"`
	Tasks []Task `json:"tasks"`
	Count int    `json:"count"`
}

// ArchiveDate formats a completion timestamp as the UTC calendar day used
// for archive bucketing.
func ArchiveDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// NormalizeTag lower-cases a tag for case-insensitive comparison.
func NormalizeTag(tag string) string {
	return strings.ToLower(tag)
}
