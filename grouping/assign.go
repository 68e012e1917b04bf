package grouping

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type Params struct {
	MaxAttempts int
}

var DefaultParams = Params{
	MaxAttempts: 20000,
}

// Roster is the read-only input of Assign.
type Roster struct {
	Students     []Student
	Incompatible *Relation
}

type Result struct {
	Groups   []Group
	Attempts int
}

type engine struct {
	students []Student
	rel      *Relation
	maxFront int
}

// Assign partitions the roster into groups of four or five (plus at most one
// smaller group when the roster size leaves a remainder of three). Every
// attempt starts from a fresh shuffle; an attempt that leaves anyone unplaced
// or flags more than maxFrontGroups front groups is thrown away whole.
//
// Assign gives up with ErrInfeasible after params.MaxAttempts attempts and
// with ErrBudgetExceeded when ctx is done.
func Assign(ctx context.Context, roster Roster, maxFrontGroups int, params Params, rng *rand.Rand) (Result, error) {
	if err := validate(roster, maxFrontGroups); err != nil {
		return Result{}, err
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = DefaultParams.MaxAttempts
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &engine{
		students: roster.Students,
		rel:      roster.Incompatible,
		maxFront: maxFrontGroups,
	}
	n := len(e.students)
	order := make([]int, n)

	for attempt := 1; attempt <= params.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{Attempts: attempt - 1}, fmt.Errorf("%w after %d attempts: %w", ErrBudgetExceeded, attempt-1, err)
		}
		for i := range order {
			order[i] = i
		}
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		groups, ok := e.attempt(order)
		if !ok {
			continue
		}
		now := time.Now()
		for i := range groups {
			groups[i].ID = uuid.NewString()
			groups[i].DateCreated = now
		}
		return Result{Groups: groups, Attempts: attempt}, nil
	}
	return Result{Attempts: params.MaxAttempts}, fmt.Errorf("%w in %d attempts", ErrInfeasible, params.MaxAttempts)
}

// attempt runs one full pass over a shuffled roster. It reports false when
// the pass must be discarded.
func (e *engine) attempt(order []int) ([]Group, bool) {
	p := newPool(order, len(e.students))
	pl := planFor(len(order))

	var drafts []*draft
	var deferred []int
	switch {
	case pl.needsTriad():
		drafts = append(drafts, e.buildTriad(p))
	case pl.remainder > 0:
		deferred = e.deferStudents(p, pl.remainder)
	}

	for range pl.numberOfGroups {
		seed := -1
		if len(deferred) > 0 {
			seed, deferred = deferred[0], deferred[1:]
		}
		drafts = append(drafts, e.compose(p, seed))
	}

	if !p.empty() || len(deferred) > 0 {
		return nil, false
	}
	for _, d := range drafts {
		if d.fill() == FillPartial {
			return nil, false
		}
	}

	groups := make([]Group, len(drafts))
	for gi, d := range drafts {
		groups[gi].Number = gi + 1
		groups[gi].Members = make([]Student, len(d.members))
		for mi, i := range d.members {
			groups[gi].Members[mi] = e.students[i]
		}
	}
	if MarkFrontGroups(groups) > e.maxFront {
		return nil, false
	}
	return groups, true
}

func validate(roster Roster, maxFrontGroups int) error {
	switch n := len(roster.Students); {
	case n == 0:
		return ErrEmptyRoster
	case !planFor(n).seatable():
		return fmt.Errorf("%w: got %d students", ErrRosterTooSmall, n)
	}
	if maxFrontGroups < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFrontLimit, maxFrontGroups)
	}
	ids := make(map[int64]bool, len(roster.Students))
	for _, s := range roster.Students {
		if ids[s.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateStudent, s.ID)
		}
		ids[s.ID] = true
	}
	for _, pair := range roster.Incompatible.Pairs() {
		for _, id := range pair {
			if !ids[id] {
				return fmt.Errorf("%w: %d", ErrUnknownStudent, id)
			}
		}
	}
	return nil
}
