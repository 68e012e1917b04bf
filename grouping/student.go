package grouping

import (
	"cmp"
	"fmt"
	"strings"
)

type Gender int

const (
	GenderUnset Gender = iota
	Male
	Female
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "Male"
	case Female:
		return "Female"
	}
	return ""
}

func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return GenderUnset, nil
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return GenderUnset, fmt.Errorf("unknown gender %q", s)
}

// AbilityLevel orders students academically. The zero value means the level
// was never recorded and ranks below Low.
type AbilityLevel int

const (
	AbilityUnset AbilityLevel = iota
	Low
	Average
	High
)

func (a AbilityLevel) String() string {
	switch a {
	case Low:
		return "Low"
	case Average:
		return "Average"
	case High:
		return "High"
	}
	return ""
}

func ParseAbilityLevel(s string) (AbilityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return AbilityUnset, nil
	case "low":
		return Low, nil
	case "average":
		return Average, nil
	case "high":
		return High, nil
	}
	return AbilityUnset, fmt.Errorf("unknown ability level %q", s)
}

func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Gender) UnmarshalText(b []byte) error {
	v, err := ParseGender(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

func (a AbilityLevel) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AbilityLevel) UnmarshalText(b []byte) error {
	v, err := ParseAbilityLevel(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

type Student struct {
	ID                   int64        `json:"id"`
	Name                 string       `json:"name"`
	Gender               Gender       `json:"gender"`
	Ability              AbilityLevel `json:"ability_level"`
	FrontSeatNeeded      bool         `json:"front_seat_needed"`
	PreferredGroupOfFive bool         `json:"preferred_group_of_five"`
}

func (s Student) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s, Gender: %s, Ability Level: %s", s.Name, s.Gender, s.Ability)
	if s.FrontSeatNeeded {
		b.WriteString(", Needs Front Seat")
	}
	if s.PreferredGroupOfFive {
		b.WriteString(", Needs Group of Five")
	}
	return b.String()
}

// CompareAbility orders ascending from unset through High.
func CompareAbility(a, b Student) int {
	return cmp.Compare(a.Ability, b.Ability)
}

// CompareGender puts unset genders first, then females, then males.
func CompareGender(a, b Student) int {
	rank := func(g Gender) int {
		switch g {
		case Female:
			return 1
		case Male:
			return 2
		}
		return 0
	}
	return cmp.Compare(rank(a.Gender), rank(b.Gender))
}
