// Package sweep holds the offline maintenance passes over the catalog:
// duplicate-group merging and dead-link pruning. Each pass walks the whole
// catalog once and commits its deletions independently, so one bad group or
// one unreachable link never aborts the sweep.
package sweep

import (
	"fmt"
	"log/slog"

	"github.com/fedotkin/audiodex/app/database"
)

// DedupResult summarizes one duplicate-merge sweep.
type DedupResult struct {
	Groups  int
	Removed int
	Errored int
}

// Deduplicate merges every (title, author) group with more than one member,
// keeping the earliest-created audiobook and deleting the rest. Groups are
// committed independently.
func Deduplicate(repo database.MaintenanceRepository) (DedupResult, error) {
	groups, err := repo.DuplicateGroups()
	if err != nil {
		return DedupResult{}, fmt.Errorf("failed to find duplicate groups: %w", err)
	}

	result := DedupResult{Groups: len(groups)}
	for _, group := range groups {
		if len(group.BookIDs) < 2 {
			continue
		}

		extra := group.BookIDs[1:]
		if err := repo.DeleteBooks(extra); err != nil {
			slog.Error("failed to merge duplicate group", "title", group.Title, "error", err)
			result.Errored++
			continue
		}

		slog.Info("merged duplicate group", "title", group.Title, "kept", group.BookIDs[0], "removed", len(extra))
		result.Removed += len(extra)
	}

	return result, nil
}
