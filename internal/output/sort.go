package output

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"scrumboard/internal/service"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []string{"id", "task", "status", "category", "estimate", "responsible", "owner"}

var taskComparers = map[string]func(a, b service.Task) int{
	"id":       func(a, b service.Task) int { return cmp.Compare(a.ID, b.ID) },
	"task":     func(a, b service.Task) int { return strings.Compare(strings.ToLower(a.Task), strings.ToLower(b.Task)) },
	"status":   func(a, b service.Task) int { return strings.Compare(a.Status, b.Status) },
	"category": func(a, b service.Task) int { return strings.Compare(a.CategoryItem, b.CategoryItem) },
	"estimate": func(a, b service.Task) int { return cmp.Compare(a.Estimate, b.Estimate) },
	"responsible": func(a, b service.Task) int {
		return strings.Compare(a.ResponsibleUsername, b.ResponsibleUsername)
	},
	"owner": func(a, b service.Task) int { return strings.Compare(a.OwnerUsername, b.OwnerUsername) },
}

// SortTasks stably sorts tasks in place by key. Equal keys keep their
// API order in both directions.
func SortTasks(tasks []service.Task, key string, desc bool) error {
	compare, ok := taskComparers[key]
	if !ok {
		return fmt.Errorf("unknown sort key: %s (valid: %s)", key, strings.Join(SortKeys, ", "))
	}
	slices.SortStableFunc(tasks, func(a, b service.Task) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return nil
}
