package main

import (
	"cmp"
	"context"
	"errors"
	"math/rand"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"seating/grouping"
	"seating/internal/preview"
)

// assignStatus maps grouping.Assign failures to HTTP status codes.
func assignStatus(err error) int {
	switch {
	case errors.Is(err, grouping.ErrInfeasible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, grouping.ErrBudgetExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, grouping.ErrEmptyRoster),
		errors.Is(err, grouping.ErrRosterTooSmall),
		errors.Is(err, grouping.ErrInvalidFrontLimit),
		errors.Is(err, grouping.ErrDuplicateStudent),
		errors.Is(err, grouping.ErrUnknownStudent):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// sortMembers orders each group's members from High ability down, then by name.
func sortMembers(groups []grouping.Group) {
	for _, g := range groups {
		slices.SortStableFunc(g.Members, func(a, b grouping.Student) int {
			return cmp.Or(grouping.CompareAbility(b, a), strings.Compare(a.Name, b.Name))
		})
	}
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}

	var rng *rand.Rand
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		rng = rand.New(rand.NewSource(seed))
	}

	roster, maxFront, err := s.rosters.LoadRoster(r.Context(), classroomID)
	if errors.Is(err, errClassroomNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "load roster", err, "classroom_id", classroomID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Engine.Timeout)
	defer cancel()
	start := time.Now()
	res, err := grouping.Assign(ctx, roster, maxFront, grouping.Params{MaxAttempts: s.cfg.Engine.MaxAttempts}, rng)
	elapsed := time.Since(start)
	s.metrics.Observe(res, err, elapsed)
	if err != nil {
		status := assignStatus(err)
		s.log.Warn("group assignment failed", "classroom_id", classroomID, "students", len(roster.Students),
			"attempts", res.Attempts, "elapsed", elapsed, "status", status, "err", err)
		http.Error(w, err.Error(), status)
		return
	}
	s.log.Info("groups generated", "classroom_id", classroomID, "students", len(roster.Students),
		"groups", len(res.Groups), "attempts", res.Attempts, "elapsed", elapsed)

	sortMembers(res.Groups)
	p := preview.Preview{
		ClassroomID:        classroomID,
		MaximumFrontGroups: maxFront,
		Attempts:           res.Attempts,
		CreatedAt:          time.Now(),
		Groups:             res.Groups,
	}
	if err := s.previews.Put(r.Context(), p); err != nil {
		s.serverError(w, "store preview", err, "classroom_id", classroomID)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	p, err := s.previews.Get(r.Context(), classroomID)
	if errors.Is(err, preview.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "get preview", err, "classroom_id", classroomID)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleDiscardPreview(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	if err := s.previews.Delete(r.Context(), classroomID); err != nil {
		s.serverError(w, "discard preview", err, "classroom_id", classroomID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// refreshPreview rebuilds a stored preview against the current roster. It
// fails with grouping.ErrInvalidPartition when roster edits made since the
// preview was generated leave it breaking a grouping rule.
func refreshPreview(p preview.Preview, roster grouping.Roster, maxFront int) ([]grouping.Group, error) {
	current := make(map[int64]grouping.Student, len(roster.Students))
	for _, st := range roster.Students {
		current[st.ID] = st
	}
	groups := slices.Clone(p.Groups)
	for i := range groups {
		members := make([]grouping.Student, len(groups[i].Members))
		for j, m := range groups[i].Members {
			st, ok := current[m.ID]
			if !ok {
				st = m
			}
			members[j] = st
		}
		groups[i].Members = members
	}
	grouping.MarkFrontGroups(groups)
	if err := grouping.Check(roster, groups, maxFront); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *server) handleCommitGroups(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	p, err := s.previews.Get(r.Context(), classroomID)
	if errors.Is(err, preview.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "get preview", err, "classroom_id", classroomID)
		return
	}

	roster, maxFront, err := s.rosters.LoadRoster(r.Context(), classroomID)
	if errors.Is(err, errClassroomNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "load roster", err, "classroom_id", classroomID)
		return
	}

	groups, err := refreshPreview(p, roster, maxFront)
	if err != nil {
		s.log.Info("stale preview rejected", "classroom_id", classroomID, "err", err)
		http.Error(w, "preview is out of date, generate again: "+err.Error(), http.StatusConflict)
		return
	}
	if err := s.rosters.SaveGroups(r.Context(), classroomID, groups); err != nil {
		s.serverError(w, "save groups", err, "classroom_id", classroomID)
		return
	}
	if err := s.previews.Delete(r.Context(), classroomID); err != nil {
		s.log.Warn("failed to drop saved preview", "classroom_id", classroomID, "err", err)
	}
	s.log.Info("groups saved", "classroom_id", classroomID, "groups", len(groups))
	writeJSON(w, http.StatusCreated, groups)
}

func (s *server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	groups, err := s.rosters.LatestGroups(r.Context(), classroomID)
	if err != nil {
		s.serverError(w, "list groups", err, "classroom_id", classroomID)
		return
	}
	if groups == nil {
		groups = []grouping.Group{}
	}
	sortMembers(groups)
	writeJSON(w, http.StatusOK, groups)
}
