package grouping

var triadSlots = [...]AbilityLevel{High, Average, Low}

// buildTriad fills one high, one average and one low seat in that order,
// each from the first eligible student in the pool. After the high seat at
// most one female is admitted. A seat with no eligible student stays empty,
// so the result may be partial.
func (e *engine) buildTriad(p *pool) *draft {
	d := &draft{target: len(triadSlots)}
	for _, level := range triadSlots {
		for _, i := range p.order {
			if !p.available(i) {
				continue
			}
			s := e.students[i]
			if s.Ability != level {
				continue
			}
			if s.Gender == Female && d.females > 0 {
				continue
			}
			if e.conflicts(d, i) {
				continue
			}
			d.admit(s, i)
			p.take(i)
			break
		}
	}
	return d
}
