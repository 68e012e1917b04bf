package grouping

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "01/02/2006 03:04 PM"

type Group struct {
	ID           string    `json:"id"`
	Number       int       `json:"group_number"`
	IsFrontGroup bool      `json:"is_front_group"`
	DateCreated  time.Time `json:"date_created"`
	Members      []Student `json:"members"`
}

func (g Group) Size() int {
	return len(g.Members)
}

func (g Group) HasMember(id int64) bool {
	return slices.ContainsFunc(g.Members, func(s Student) bool { return s.ID == id })
}

func (g Group) String() string {
	s := fmt.Sprintf("Group # %d, %s", g.Number, g.DateCreated.Format(dateLayout))
	if g.IsFrontGroup {
		s += ", Front Group"
	}
	return s
}

// Fill tells whether a builder reached the size it was aiming for.
type Fill int

const (
	FillFull Fill = iota
	FillPartial
)

func (f Fill) String() string {
	if f == FillFull {
		return "full"
	}
	return "partial"
}

// draft is a group under construction. members are roster indices.
type draft struct {
	members []int
	target  int
	highs   int
	lows    int
	females int
	males   int
}

func (d *draft) admit(s Student, i int) {
	d.members = append(d.members, i)
	switch s.Ability {
	case High:
		d.highs++
	case Low:
		d.lows++
	}
	switch s.Gender {
	case Female:
		d.females++
	case Male:
		d.males++
	}
}

func (d *draft) full() bool {
	return len(d.members) >= d.target
}

func (d *draft) fill() Fill {
	if d.full() {
		return FillFull
	}
	return FillPartial
}

// PartitionKey renders groups as a canonical string, independent of group
// order and member order, so equal partitions compare equal.
func PartitionKey(groups []Group) string {
	gs := make([][]int64, 0, len(groups))
	for _, g := range groups {
		ids := make([]int64, 0, len(g.Members))
		for _, m := range g.Members {
			ids = append(ids, m.ID)
		}
		slices.Sort(ids)
		gs = append(gs, ids)
	}
	slices.SortFunc(gs, func(a, b []int64) int { return slices.Compare(a, b) })
	var buf strings.Builder
	for _, g := range gs {
		for i, m := range g {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.FormatInt(m, 10))
		}
		buf.WriteByte(';')
	}
	return buf.String()
}
