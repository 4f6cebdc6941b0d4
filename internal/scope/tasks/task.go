// Package tasks implements the task queue store: a small priority queue of task
// descriptions with push, pop, import and export operations.
package tasks

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Task is a single queued task. Priority is derived from the description and is
// never trusted from stored or imported data.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"desc"`
	Priority    int    `json:"priority"`
}

// PriorityOf returns the priority for a description: its length in characters.
func PriorityOf(description string) int {
	return utf8.RuneCountInString(description)
}

// normalize trims the description and recomputes the priority.
// ok is false when nothing is left after trimming.
func normalize(t Task) (Task, bool) {
	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		return Task{}, false
	}
	t.Priority = PriorityOf(t.Description)
	return t, true
}

// sortQueue orders tasks by priority, highest first. Ties keep their current order.
func sortQueue(queue []Task) {
	slices.SortStableFunc(queue, func(a, b Task) int {
		return b.Priority - a.Priority
	})
}
