// Package planner splits the fetched tasks into the focus panel and the
// overview panel. Planning is pure: the same input always yields the same
// output and the input slice is never modified.
package planner

import (
	"slices"

	"todoink/internal/state"
	"todoink/internal/todoist"
)

// Plan partitions tasks into focus (tasks in the resolved project and
// section) and overview (everything else). Both lists are ordered by due
// date ascending, then id ascending; tasks without a due date come last.
// An unresolved state yields an empty focus list.
func Plan(tasks []todoist.Task, st state.PersistedState) (focus, overview []todoist.Task) {
	focus = make([]todoist.Task, 0, len(tasks))
	overview = make([]todoist.Task, 0, len(tasks))
	for _, task := range tasks {
		if InFocus(task, st) {
			focus = append(focus, task)
		} else {
			overview = append(overview, task)
		}
	}
	slices.SortStableFunc(focus, Compare)
	slices.SortStableFunc(overview, Compare)
	return focus, overview
}

// InFocus reports whether task belongs to the focus panel.
func InFocus(task todoist.Task, st state.PersistedState) bool {
	if !st.Resolved() {
		return false
	}
	return task.ProjectID == st.ProjectID && task.SectionID == st.SectionID
}

// Compare orders tasks by due instant, then by id.
func Compare(a, b todoist.Task) int {
	aDue, bDue := a.HasDue(), b.HasDue()
	switch {
	case aDue && bDue:
		if c := a.Due.At.Compare(b.Due.At); c != 0 {
			return c
		}
	case aDue:
		return -1
	case bDue:
		return 1
	}
	return todoist.CompareIDs(a.ID, b.ID)
}
