package services

import (
	"context"

	"github.com/yukikurage/task-user-api/internal/repository"
)

// dedupe returns ids with duplicates removed, keeping first occurrences.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// diffReferences compares two id sets. removed holds ids only in before, added
// holds ids only in after; both keep the order of their source list.
func diffReferences(before, after []string) (removed, added []string) {
	inBefore := make(map[string]struct{}, len(before))
	for _, id := range before {
		inBefore[id] = struct{}{}
	}
	inAfter := make(map[string]struct{}, len(after))
	for _, id := range after {
		inAfter[id] = struct{}{}
	}

	for _, id := range dedupe(before) {
		if _, ok := inAfter[id]; !ok {
			removed = append(removed, id)
		}
	}
	for _, id := range dedupe(after) {
		if _, ok := inBefore[id]; !ok {
			added = append(added, id)
		}
	}
	return removed, added
}

// ineligibleTasks returns the ids that cannot become pending tasks of a user:
// ids with no task, completed tasks and tasks already assigned to someone.
func ineligibleTasks(ctx context.Context, tasks repository.TaskRepository, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := tasks.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	eligible := make(map[string]bool, len(found))
	for i := range found {
		_, assigned := found[i].Assignee()
		eligible[found[i].ID] = !found[i].Completed && !assigned
	}

	var invalid []string
	for _, id := range ids {
		if !eligible[id] {
			invalid = append(invalid, id)
		}
	}
	return invalid, nil
}
