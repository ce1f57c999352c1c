package workflow

import (
	"slices"

	"mk3hierros/internal/models"
)

// SortByStatus moves finished and canceled works after all the others while
// keeping the relative order inside both groups. The input is not modified.
func SortByStatus(works []models.Work) []models.Work {
	sorted := slices.Clone(works)
	slices.SortStableFunc(sorted, func(a, b models.Work) int {
		return closedRank(a.Status) - closedRank(b.Status)
	})
	return sorted
}

func closedRank(s models.Status) int {
	if s.Closed() {
		return 1
	}
	return 0
}
