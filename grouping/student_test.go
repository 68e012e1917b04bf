package grouping

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	g, err := ParseGender(" Female ")
	require.NoError(t, err)
	require.Equal(t, Female, g)

	g, err = ParseGender("m")
	require.NoError(t, err)
	require.Equal(t, Male, g)

	g, err = ParseGender("")
	require.NoError(t, err)
	require.Equal(t, GenderUnset, g)

	_, err = ParseGender("other")
	require.Error(t, err)

	a, err := ParseAbilityLevel("HIGH")
	require.NoError(t, err)
	require.Equal(t, High, a)

	a, err = ParseAbilityLevel("")
	require.NoError(t, err)
	require.Equal(t, AbilityUnset, a)

	_, err = ParseAbilityLevel("gifted")
	require.Error(t, err)
}

func TestCompareAbility(t *testing.T) {
	students := []Student{
		{Name: "high", Ability: High},
		{Name: "unset"},
		{Name: "low", Ability: Low},
		{Name: "average", Ability: Average},
	}
	slices.SortFunc(students, CompareAbility)

	var names []string
	for _, s := range students {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"unset", "low", "average", "high"}, names)
}

func TestCompareGender(t *testing.T) {
	students := []Student{
		{Name: "m", Gender: Male},
		{Name: "f", Gender: Female},
		{Name: "u"},
	}
	slices.SortStableFunc(students, CompareGender)

	require.Equal(t, "u", students[0].Name)
	require.Equal(t, "f", students[1].Name)
	require.Equal(t, "m", students[2].Name)
}

func TestStudentString(t *testing.T) {
	s := Student{Name: "Ada", Gender: Female, Ability: High, FrontSeatNeeded: true}
	require.Equal(t, "Name: Ada, Gender: Female, Ability Level: High, Needs Front Seat", s.String())
}

func TestStudentJSON(t *testing.T) {
	var s Student
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"name":"Bo","gender":"male","ability_level":""}`), &s))
	require.Equal(t, Male, s.Gender)
	require.Equal(t, AbilityUnset, s.Ability)

	out, err := json.Marshal(Student{ID: 1, Gender: Female, Ability: Low})
	require.NoError(t, err)
	require.Contains(t, string(out), `"gender":"Female"`)
	require.Contains(t, string(out), `"ability_level":"Low"`)

	require.Error(t, json.Unmarshal([]byte(`{"gender":"x"}`), &s))
}
