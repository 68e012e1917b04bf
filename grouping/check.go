package grouping

import "fmt"

// Check verifies that groups is an acceptable result for roster:
//   - every student seated exactly once and no incompatible pair together;
//   - the group sizes the roster size calls for: all fours, plus one five per
//     leftover student when one or two are left over, or one three when
//     three are;
//   - at most two High and two Low students per group;
//   - with one or two fives, students asking for a group of five sit in them
//     ahead of anyone else;
//   - no more than maxFrontGroups groups flagged front.
func Check(roster Roster, groups []Group, maxFrontGroups int) error {
	seen := make(map[int64]int, len(roster.Students))
	preferred := 0
	for _, s := range roster.Students {
		seen[s.ID] = 0
		if s.PreferredGroupOfFive {
			preferred++
		}
	}

	threes, fives, fivesWithPreferred, front := 0, 0, 0, 0
	for _, g := range groups {
		switch size := g.Size(); size {
		case 3:
			threes++
		case 4:
		case 5:
			fives++
		default:
			return fmt.Errorf("%w: group %d has %d members", ErrInvalidPartition, g.Number, size)
		}
		if g.IsFrontGroup {
			front++
		}
		highs, lows, wantsFive := 0, 0, false
		for i, a := range g.Members {
			n, ok := seen[a.ID]
			if !ok {
				return fmt.Errorf("%w: student %d is not on the roster", ErrInvalidPartition, a.ID)
			}
			if n > 0 {
				return fmt.Errorf("%w: student %d is seated twice", ErrInvalidPartition, a.ID)
			}
			seen[a.ID] = 1
			for _, b := range g.Members[i+1:] {
				if roster.Incompatible.AreIncompatible(a.ID, b.ID) {
					return fmt.Errorf("%w: students %d and %d share group %d", ErrInvalidPartition, a.ID, b.ID, g.Number)
				}
			}
			switch a.Ability {
			case High:
				highs++
			case Low:
				lows++
			}
			wantsFive = wantsFive || a.PreferredGroupOfFive
		}
		if highs > maxHighs || lows > maxLows {
			return fmt.Errorf("%w: group %d has %d High and %d Low students", ErrInvalidPartition, g.Number, highs, lows)
		}
		if g.Size() == 5 && wantsFive {
			fivesWithPreferred++
		}
	}
	for id, n := range seen {
		if n == 0 {
			return fmt.Errorf("%w: student %d has no group", ErrInvalidPartition, id)
		}
	}

	pl := planFor(len(roster.Students))
	wantThrees, wantFives := 0, 0
	if pl.needsTriad() {
		wantThrees = 1
	} else {
		wantFives = pl.remainder
	}
	if threes != wantThrees || fives != wantFives {
		return fmt.Errorf("%w: %d groups of three and %d of five for %d students, want %d and %d",
			ErrInvalidPartition, threes, fives, len(roster.Students), wantThrees, wantFives)
	}
	if fivesWithPreferred < min(preferred, wantFives) {
		return fmt.Errorf("%w: %d groups of five seat a student asking for one, want %d",
			ErrInvalidPartition, fivesWithPreferred, min(preferred, wantFives))
	}
	if front > maxFrontGroups {
		return fmt.Errorf("%w: %d front groups exceed the limit of %d", ErrInvalidPartition, front, maxFrontGroups)
	}
	return nil
}
