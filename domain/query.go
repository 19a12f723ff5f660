package domain

import (
	"sort"
	"strings"
)

// Status filter values accepted by FilterTasks.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Sort criteria and orders accepted by SortTasks.
const (
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
	SortByStatus    = "status"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// FilterTasks returns the tasks matching the status filter and, when
// searchTerm is non-blank after trimming, containing it as a
// case-insensitive substring of the title or description. Status is applied
// before the text search; unknown status values behave as StatusAll. The
// input slice is never modified.
func FilterTasks(tasks []Task, status, searchTerm string) []Task {
	result := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		switch status {
		case StatusPending:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}
		result = append(result, t)
	}

	term := strings.ToLower(strings.TrimSpace(searchTerm))
	if term == "" {
		return result
	}
	matched := make([]Task, 0, len(result))
	for _, t := range result {
		if strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Description), term) {
			matched = append(matched, t)
		}
	}
	return matched
}

// Stats aggregates completion counts over a collection.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// TaskStats counts tasks by completion state. Pending is always
// Total - Completed; a nil collection yields all zeros.
func TaskStats(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// SortTasks returns a sorted copy of tasks. Titles compare
// case-insensitively, status orders pending before completed when ascending,
// and unknown criteria fall back to creation time. The input is untouched.
func SortTasks(tasks []Task, sortBy, order string) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)

	less := func(a, b Task) bool {
		switch sortBy {
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortByStatus:
			return !a.Completed && b.Completed
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == OrderDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}
