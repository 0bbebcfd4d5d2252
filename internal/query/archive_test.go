package query

import (
	"testing"
	"time"

	"todo-manager/internal/models"
)

func completedTask(id string, completedAt time.Time) models.Task {
	return models.Task{
		ID:          id,
		Title:       "task " + id,
		Completed:   true,
		Priority:    models.PriorityMedium,
		CreatedAt:   completedAt.Add(-time.Hour),
		UpdatedAt:   completedAt,
		CompletedAt: &completedAt,
	}
}

func TestArchive_GroupsByUTCDay(t *testing.T) {
	tasks := []models.Task{
		completedTask("a", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		completedTask("b", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)),
	}

	groups := Archive(tasks)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Date != "2024-01-02" || groups[1].Date != "2024-01-01" {
		t.Errorf("expected dates [2024-01-02 2024-01-01], got [%s %s]",
			groups[0].Date, groups[1].Date)
	}
	if groups[0].Count != 1 || groups[1].Count != 1 {
		t.Errorf("expected count 1 per group, got %d and %d", groups[0].Count, groups[1].Count)
	}
}

func TestArchive_NewestFirstWithinDay(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		completedTask("early", day.Add(8*time.Hour)),
		completedTask("late", day.Add(20*time.Hour)),
		completedTask("noon", day.Add(12*time.Hour)),
	}

	groups := Archive(tasks)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	got := []string{groups[0].Tasks[0].ID, groups[0].Tasks[1].ID, groups[0].Tasks[2].ID}
	want := []string{"late", "noon", "early"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if groups[0].Count != 3 {
		t.Errorf("expected count 3, got %d", groups[0].Count)
	}
}

func TestArchive_TiesKeepInputOrder(t *testing.T) {
	at := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		completedTask("first", at),
		completedTask("second", at),
	}

	groups := Archive(tasks)
	if groups[0].Tasks[0].ID != "first" || groups[0].Tasks[1].ID != "second" {
		t.Errorf("expected stable order [first second], got [%s %s]",
			groups[0].Tasks[0].ID, groups[0].Tasks[1].ID)
	}
}

func TestArchive_SkipsPendingAndUnstamped(t *testing.T) {
	at := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	pending := models.Task{ID: "p", Title: "pending", Priority: models.PriorityLow,
		CreatedAt: at, UpdatedAt: at}
	tasks := []models.Task{pending, completedTask("c", at)}

	groups := Archive(tasks)
	if len(groups) != 1 || groups[0].Count != 1 || groups[0].Tasks[0].ID != "c" {
		t.Errorf("expected only the completed task archived, got %+v", groups)
	}
}

func TestArchive_Empty(t *testing.T) {
	groups := Archive(nil)
	if len(groups) != 0 {
		t.Errorf("expected no groups for no tasks, got %d", len(groups))
	}
}

func TestArchive_BucketsUseUTC(t *testing.T) {
	// 23:30 in UTC-5 is 04:30 the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2024, 6, 10, 23, 30, 0, 0, loc)

	groups := Archive([]models.Task{completedTask("a", at)})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Date != "2024-06-11" {
		t.Errorf("expected UTC bucket 2024-06-11, got %s", groups[0].Date)
	}
}
