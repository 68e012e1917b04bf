package grouping

const (
	maxHighs = 2
	maxLows  = 2

	// Filling stops once a group holds femaleStop females or more than
	// maxMales males.
	femaleStop = 2
	maxMales   = 3
)

// compose builds one bulk group from the pool. A seed >= 0 is a deferred
// student who starts the group and raises its target to five.
func (e *engine) compose(p *pool, seed int) *draft {
	d := &draft{target: groupSize}
	if seed >= 0 {
		d.target++
		d.admit(e.students[seed], seed)
	}

	for _, i := range p.order {
		if d.full() || p.empty() || d.females >= femaleStop || d.males > maxMales {
			break
		}
		if !p.available(i) || e.conflicts(d, i) {
			continue
		}
		s := e.students[i]
		switch s.Ability {
		case High:
			if d.highs >= maxHighs {
				continue
			}
		case Low:
			if d.lows >= maxLows {
				continue
			}
		}
		d.admit(s, i)
		p.take(i)
	}
	return d
}

func (e *engine) conflicts(d *draft, i int) bool {
	id := e.students[i].ID
	for _, m := range d.members {
		if e.rel.AreIncompatible(e.students[m].ID, id) {
			return true
		}
	}
	return false
}
