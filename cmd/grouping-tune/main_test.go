package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"seating/grouping"
)

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": 1, "name": "Ada", "gender": "Female", "ability_level": "High", "incompatible_with": [2]},
		{"id": 2, "name": "Bo", "gender": "Male", "ability_level": "", "front_seat_needed": true, "incompatible_with": [1]},
		{"id": 3, "name": "Cy", "incompatible_with": []}
	]`), 0o644))

	r, err := loadRoster(path)
	require.NoError(t, err)
	require.Len(t, r.Students, 3)
	require.Equal(t, grouping.Female, r.Students[0].Gender)
	require.Equal(t, grouping.AbilityUnset, r.Students[1].Ability)
	require.True(t, r.Students[1].FrontSeatNeeded)
	require.True(t, r.Incompatible.AreIncompatible(2, 1))
	require.Equal(t, 1, r.Incompatible.Len())
}

func TestSyntheticRoster(t *testing.T) {
	a := syntheticRoster(30, 5, 0.2, rand.New(rand.NewSource(9)))
	b := syntheticRoster(30, 5, 0.2, rand.New(rand.NewSource(9)))

	require.Equal(t, a.Students, b.Students)
	require.Equal(t, a.Incompatible.Pairs(), b.Incompatible.Pairs())
	for _, s := range a.Students {
		require.NotEqual(t, grouping.AbilityUnset, s.Ability)
	}
}

func TestParseIntList(t *testing.T) {
	require.Equal(t, []int{100, 2000}, parseIntList("100, x,2000"))
}
