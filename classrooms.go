package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

func (s *server) handleListClassrooms(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `
		SELECT c.id, c.title, c.maximum_front_groups, count(st.id)
		FROM classrooms c
		LEFT JOIN students st ON st.classroom_id = c.id
		GROUP BY c.id, c.title, c.maximum_front_groups
		ORDER BY c.title`)
	if err != nil {
		s.serverError(w, "list classrooms", err)
		return
	}
	defer rows.Close()

	type item struct {
		classroom
		Students int `json:"students"`
	}
	classrooms := []item{}
	for rows.Next() {
		var c item
		if err := rows.Scan(&c.ID, &c.Title, &c.MaximumFrontGroups, &c.Students); err != nil {
			s.serverError(w, "list classrooms", err)
			return
		}
		classrooms = append(classrooms, c)
	}
	if err := rows.Err(); err != nil {
		s.serverError(w, "list classrooms", err)
		return
	}
	writeJSON(w, http.StatusOK, classrooms)
}

func (s *server) handleCreateClassroom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title              string `json:"title"`
		MaximumFrontGroups *int   `json:"maximum_front_groups"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	c := classroom{Title: strings.TrimSpace(body.Title), MaximumFrontGroups: defaultFrontGroups}
	if body.MaximumFrontGroups != nil {
		if !validFrontGroups(*body.MaximumFrontGroups) {
			http.Error(w, "maximum_front_groups must be between 1 and 9", http.StatusBadRequest)
			return
		}
		c.MaximumFrontGroups = *body.MaximumFrontGroups
	}
	err := s.db.QueryRowContext(r.Context(), "INSERT INTO classrooms (title, maximum_front_groups) VALUES ($1, $2) RETURNING id",
		c.Title, c.MaximumFrontGroups).Scan(&c.ID)
	if err != nil {
		s.serverError(w, "create classroom", err)
		return
	}
	s.log.Info("classroom created", "classroom_id", c.ID, "title", c.Title)
	writeJSON(w, http.StatusCreated, c)
}

func (s *server) handleGetClassroom(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	c, err := getClassroom(r.Context(), s.db, classroomID)
	if errors.Is(err, errClassroomNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "get classroom", err, "classroom_id", classroomID)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleUpdateClassroom(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	var body struct {
		Title              *string `json:"title"`
		MaximumFrontGroups *int    `json:"maximum_front_groups"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Title != nil && strings.TrimSpace(*body.Title) == "" {
		http.Error(w, "title must not be empty", http.StatusBadRequest)
		return
	}
	if body.MaximumFrontGroups != nil && !validFrontGroups(*body.MaximumFrontGroups) {
		http.Error(w, "maximum_front_groups must be between 1 and 9", http.StatusBadRequest)
		return
	}

	var title *string
	if body.Title != nil {
		t := strings.TrimSpace(*body.Title)
		title = &t
	}
	result, err := s.db.ExecContext(r.Context(), `
		UPDATE classrooms SET
			title = COALESCE($1, title),
			maximum_front_groups = COALESCE($2, maximum_front_groups)
		WHERE id = $3`, title, body.MaximumFrontGroups, classroomID)
	if err != nil {
		s.serverError(w, "update classroom", err, "classroom_id", classroomID)
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		http.Error(w, "classroom not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleDeleteClassroom(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	result, err := s.db.ExecContext(r.Context(), "DELETE FROM classrooms WHERE id = $1", classroomID)
	if err != nil {
		s.serverError(w, "delete classroom", err, "classroom_id", classroomID)
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		http.Error(w, "classroom not found", http.StatusNotFound)
		return
	}
	if err := s.previews.Delete(r.Context(), classroomID); err != nil {
		s.log.Warn("failed to drop preview of deleted classroom", "classroom_id", classroomID, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) serverError(w http.ResponseWriter, op string, err error, attrs ...any) {
	s.log.Error(op+" failed", append(attrs, "err", err)...)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
