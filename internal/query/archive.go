package query

import (
	"sort"

	"todo-manager/internal/models"
)

// Archive buckets completed tasks by the UTC calendar day of their
// completion, newest day first, newest task first within a day. Tasks with
// identical completion timestamps keep their relative input order. A day
// appears only if it has at least one task; groups are derived on every
// call and never persisted.
func Archive(tasks []models.Task) []models.ArchiveGroup {
	buckets := make(map[string][]models.Task)
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		date := models.ArchiveDate(*t.CompletedAt)
		buckets[date] = append(buckets[date], t)
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]models.ArchiveGroup, 0, len(dates))
	for _, date := range dates {
		group := buckets[date]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CompletedAt.After(*group[j].CompletedAt)
		})
		groups = append(groups, models.ArchiveGroup{
			Date:  date,
			Tasks: group,
			Count: len(group),
		})
	}
	return groups
}
