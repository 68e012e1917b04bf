package grouping

import "slices"

// MarkFrontGroups flags every group seating a front-seat student and returns
// how many were flagged.
func MarkFrontGroups(groups []Group) int {
	count := 0
	for i := range groups {
		groups[i].IsFrontGroup = slices.ContainsFunc(groups[i].Members, func(s Student) bool {
			return s.FrontSeatNeeded
		})
		if groups[i].IsFrontGroup {
			count++
		}
	}
	return count
}
