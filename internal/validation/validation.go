// Package validation holds the pure field-level validation rules for task
// records. Validators never raise; they return structured results and the
// service layer decides what to do with failures.
package validation

import (
	"fmt"
	"strings"
	"time"

	"todo-manager/internal/models"
)

// Field bounds.
const (
	MaxTitleLength = 200
	MaxTagLength   = 50
)

// FieldError identifies one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects every rule failure for a compound input. All rules are
// evaluated; validation never stops at the first failure.
type Result struct {
	IsValid bool         `json:"isValid"`
	Errors  []FieldError `json:"errors"`
}

func (r *Result) add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

func (r *Result) merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
}

func (r *Result) finalize() Result {
	r.IsValid = len(r.Errors) == 0
	return *r
}

// ValidateTitle checks the title rules: trimmed non-empty, trimmed length
// at most MaxTitleLength.
func ValidateTitle(title string) Result {
	var r Result
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		r.add("title", "title must not be empty")
	} else if len([]rune(trimmed)) > MaxTitleLength {
		r.add("title", fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	return r.finalize()
}

// ValidateID checks that an identifier is a trimmed non-empty string.
func ValidateID(id string) Result {
	var r Result
	if strings.TrimSpace(id) == "" {
		r.add("id", "id must not be empty")
	}
	return r.finalize()
}

// ValidatePriority checks enum membership.
func ValidatePriority(priority string) Result {
	var r Result
	if !models.IsValidPriority(priority) {
		r.add("priority", fmt.Sprintf("priority must be one of %q, %q, %q",
			models.PriorityHigh, models.PriorityMedium, models.PriorityLow))
	}
	return r.finalize()
}

// ValidateTags checks each tag (non-empty, at most MaxTagLength characters)
// and rejects case-insensitive duplicates with a single array-level error.
func ValidateTags(tags []string) Result {
	var r Result
	seen := make(map[string]bool, len(tags))
	duplicate := false
	for i, tag := range tags {
		if tag == "" {
			r.add("tags", fmt.Sprintf("tags[%d] must not be empty", i))
			continue
		}
		if len([]rune(tag)) > MaxTagLength {
			r.add("tags", fmt.Sprintf("tags[%d] must be at most %d characters", i, MaxTagLength))
		}
		key := models.NormalizeTag(tag)
		if seen[key] {
			duplicate = true
		}
		seen[key] = true
	}
	if duplicate {
		r.add("tags", "tags must not contain duplicates")
	}
	return r.finalize()
}

// ValidateTimestamp checks that a serialized timestamp parses as RFC 3339.
// When nullable is true an empty value is accepted (completedAt).
func ValidateTimestamp(field, value string, nullable bool) Result {
	var r Result
	if value == "" {
		if !nullable {
			r.add(field, field+" must be a valid timestamp")
		}
		return r.finalize()
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		r.add(field, field+" must be a valid timestamp")
	}
	return r.finalize()
}

// ValidateCreate validates a create payload: title required, optional
// fields checked only when present. Defaults are applied by the service
// after this passes.
func ValidateCreate(in models.CreateTaskInput) Result {
	var r Result
	r.merge(ValidateTitle(in.Title))
	if in.Priority != nil {
		r.merge(ValidatePriority(*in.Priority))
	}
	if in.Tags != nil {
		r.merge(ValidateTags(in.Tags))
	}
	return r.finalize()
}

// ValidateUpdate validates only the fields present in a partial update.
// The "no fields at all" case is the service's responsibility; an empty
// input is valid here.
func ValidateUpdate(in models.UpdateTaskInput) Result {
	var r Result
	if in.Title != nil {
		r.merge(ValidateTitle(*in.Title))
	}
	if in.Priority != nil {
		r.merge(ValidatePriority(*in.Priority))
	}
	if in.Tags != nil {
		r.merge(ValidateTags(*in.Tags))
	}
	return r.finalize()
}

// ValidateTask validates a full record, including the derived timestamp
// pairing. Used for records about to be persisted wholesale.
func ValidateTask(task models.Task) Result {
	var r Result
	r.merge(ValidateID(task.ID))
	r.merge(ValidateTitle(task.Title))
	r.merge(ValidatePriority(task.Priority))
	r.merge(ValidateTags(task.Tags))
	if task.CreatedAt.IsZero() {
		r.add("createdAt", "createdAt must be a valid timestamp")
	}
	if task.UpdatedAt.IsZero() {
		r.add("updatedAt", "updatedAt must be a valid timestamp")
	}
	if task.Completed != (task.CompletedAt != nil) {
		r.add("completedAt", "completedAt must be set exactly when completed is true")
	}
	return r.finalize()
}
