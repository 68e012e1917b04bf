package grouping

// pool is the working copy of one shuffled roster. Students are never removed
// from order; taking one only flips its marker, so scan positions stay stable.
type pool struct {
	order     []int
	taken     []bool
	remaining int
}

func newPool(order []int, size int) *pool {
	return &pool{
		order:     order,
		taken:     make([]bool, size),
		remaining: len(order),
	}
}

func (p *pool) available(i int) bool {
	return !p.taken[i]
}

func (p *pool) take(i int) {
	if p.taken[i] {
		return
	}
	p.taken[i] = true
	p.remaining--
}

func (p *pool) empty() bool {
	return p.remaining == 0
}
