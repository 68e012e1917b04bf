package grouping

const groupSize = 4

type plan struct {
	numberOfGroups int
	remainder      int
}

func planFor(n int) plan {
	return plan{numberOfGroups: n / groupSize, remainder: n % groupSize}
}

// needsTriad reports whether one three-seat group must be built first.
func (p plan) needsTriad() bool {
	return p.remainder == 3
}

// seatable reports whether every deferred student can join a bulk group.
// Rosters of 1, 2 and 6 leave a fifth member with no group to join.
func (p plan) seatable() bool {
	return p.needsTriad() || p.remainder <= p.numberOfGroups
}

// firstNumber is the number given to the first bulk group.
func (p plan) firstNumber() int {
	if p.needsTriad() {
		return 2
	}
	return 1
}

// deferStudents sets aside the students who will become the fifth member of
// the first bulk groups. Students asking for a group of five go first, then
// average students, each in pool order. The quota can stay short when the
// roster has too few of either.
func (e *engine) deferStudents(p *pool, quota int) []int {
	if quota <= 0 {
		return nil
	}
	deferred := make([]int, 0, quota)
	pick := func(match func(Student) bool) {
		for _, i := range p.order {
			if len(deferred) == quota {
				return
			}
			if !p.available(i) || !match(e.students[i]) {
				continue
			}
			deferred = append(deferred, i)
			p.take(i)
		}
	}
	pick(func(s Student) bool { return s.PreferredGroupOfFive })
	pick(func(s Student) bool { return s.Ability == Average })
	return deferred
}
