package plan

import (
	"slices"

	"github.com/felixgeelhaar/specplan/internal/domain"
)

// sortedIDs sorts ids numerically and removes duplicates. The input is
// modified.
func sortedIDs(ids []domain.TaskID) []domain.TaskID {
	if len(ids) == 0 {
		return []domain.TaskID{}
	}
	slices.SortFunc(ids, domain.CompareTaskIDs)
	return slices.Compact(ids)
}
