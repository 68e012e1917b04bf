package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"seating/grouping"
)

// rosterFile matches the body of GET /api/classrooms/{id}/students.
type rosterFile []struct {
	grouping.Student
	IncompatibleWith []int64 `json:"incompatible_with"`
}

func loadRoster(path string) (grouping.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return grouping.Roster{}, err
	}
	var rf rosterFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return grouping.Roster{}, err
	}
	r := grouping.Roster{Incompatible: grouping.NewRelation()}
	for _, s := range rf {
		r.Students = append(r.Students, s.Student)
		for _, other := range s.IncompatibleWith {
			r.Incompatible.Add(s.ID, other)
		}
	}
	return r, nil
}

// syntheticRoster builds n students with random attributes and pairs random
// incompatibilities.
func syntheticRoster(n, pairs int, front float64, rng *rand.Rand) grouping.Roster {
	r := grouping.Roster{Incompatible: grouping.NewRelation()}
	for i := range n {
		s := grouping.Student{
			ID:              int64(i + 1),
			Name:            "student-" + strconv.Itoa(i+1),
			Gender:          grouping.Gender(rng.Intn(3)),
			Ability:         grouping.AbilityLevel(1 + rng.Intn(3)),
			FrontSeatNeeded: rng.Float64() < front,
		}
		r.Students = append(r.Students, s)
	}
	for range pairs {
		a, b := rng.Int63n(int64(n))+1, rng.Int63n(int64(n))+1
		r.Incompatible.Add(a, b)
	}
	return r
}

type runResult struct {
	attempts int
	groups   []grouping.Group
	elapsed  time.Duration
	err      error
}

func printStats(label string, results []runResult, runs int) {
	outcomes := map[string]int{}
	partitions := map[string]int{}
	var totalTime time.Duration
	var attempts []int

	for _, r := range results {
		totalTime += r.elapsed
		switch {
		case r.err == nil:
			outcomes["ok"]++
			attempts = append(attempts, r.attempts)
			partitions[grouping.PartitionKey(r.groups)]++
		case errors.Is(r.err, grouping.ErrInfeasible):
			outcomes["infeasible"]++
		case errors.Is(r.err, grouping.ErrBudgetExceeded):
			outcomes["budget exceeded"]++
		default:
			outcomes[r.err.Error()]++
		}
	}

	fmt.Printf("--- %s ---\n", label)
	fmt.Printf("  avg time: %v\n", totalTime/time.Duration(runs))

	var names []string
	for name := range outcomes {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("  outcomes:\n")
	for _, name := range names {
		c := outcomes[name]
		fmt.Printf("    %s: %d/%d runs (%.0f%%)\n", name, c, runs, float64(c)/float64(runs)*100)
	}

	if len(attempts) > 0 {
		slices.Sort(attempts)
		fmt.Printf("  attempts: min %d, median %d, max %d\n",
			attempts[0], attempts[len(attempts)/2], attempts[len(attempts)-1])
	}

	fmt.Printf("  unique partitions seen: %d\n", len(partitions))
	var freqs []int
	for _, c := range partitions {
		freqs = append(freqs, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(freqs)))
	if len(freqs) > 0 {
		topN := min(5, len(freqs))
		fmt.Printf("  top %d partition frequencies: ", topN)
		for i := range topN {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%d/%d", freqs[i], runs)
		}
		fmt.Println()
	}
	fmt.Println()
}

func main() {
	rosterPath := flag.String("roster", "", "students JSON file as returned by the students endpoint")
	synthetic := flag.Int("synthetic", 26, "size of a random roster when -roster is empty")
	pairs := flag.Int("pairs", 6, "random incompatible pairs in a synthetic roster")
	frontShare := flag.Float64("front", 0.1, "share of synthetic students needing a front seat")
	maxFront := flag.Int("maxfront", 10, "maximum front groups")
	runs := flag.Int("runs", 20, "number of runs per parameter set")
	attemptCaps := flag.String("attempts", "20000", "comma-separated attempt caps")
	timeout := flag.Duration("timeout", 10*time.Second, "time budget per run")
	seed := flag.Int64("seed", 1, "seed for the synthetic roster")
	flag.Parse()

	var roster grouping.Roster
	if *rosterPath != "" {
		var err error
		roster, err = loadRoster(*rosterPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading roster: %v\n", err)
			os.Exit(1)
		}
	} else {
		roster = syntheticRoster(*synthetic, *pairs, *frontShare, rand.New(rand.NewSource(*seed)))
	}

	front := 0
	for _, s := range roster.Students {
		if s.FrontSeatNeeded {
			front++
		}
	}
	fmt.Printf("Students: %d, Incompatible pairs: %d, Front seat: %d\n", len(roster.Students), roster.Incompatible.Len(), front)
	fmt.Printf("Max front groups: %d\n", *maxFront)
	fmt.Printf("Runs per config: %d\n\n", *runs)

	for _, maxAttempts := range parseIntList(*attemptCaps) {
		params := grouping.Params{MaxAttempts: maxAttempts}
		var results []runResult
		for run := range *runs {
			rng := rand.New(rand.NewSource(int64(run * 31337)))
			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			start := time.Now()
			res, err := grouping.Assign(ctx, roster, *maxFront, params, rng)
			elapsed := time.Since(start)
			cancel()
			results = append(results, runResult{res.Attempts, res.Groups, elapsed, err})
		}
		printStats(fmt.Sprintf("attempts=%d", maxAttempts), results, *runs)
	}
}

func parseIntList(s string) []int {
	parts := strings.Split(s, ",")
	var result []int
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil {
			result = append(result, v)
		}
	}
	return result
}
