package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"seating/grouping"
)

var errStudentNotFound = errors.New("student not found")

type studentBody struct {
	Name                 *string `json:"name"`
	Gender               *string `json:"gender"`
	AbilityLevel         *string `json:"ability_level"`
	FrontSeatNeeded      *bool   `json:"front_seat_needed"`
	PreferredGroupOfFive *bool   `json:"preferred_group_of_five"`
}

// apply copies the set fields of b onto st.
func (b studentBody) apply(st *grouping.Student) error {
	if b.Name != nil {
		name := strings.TrimSpace(*b.Name)
		if name == "" {
			return errors.New("name must not be empty")
		}
		st.Name = name
	}
	if b.Gender != nil {
		g, err := grouping.ParseGender(*b.Gender)
		if err != nil {
			return err
		}
		st.Gender = g
	}
	if b.AbilityLevel != nil {
		a, err := grouping.ParseAbilityLevel(*b.AbilityLevel)
		if err != nil {
			return err
		}
		st.Ability = a
	}
	if b.FrontSeatNeeded != nil {
		st.FrontSeatNeeded = *b.FrontSeatNeeded
	}
	if b.PreferredGroupOfFive != nil {
		st.PreferredGroupOfFive = *b.PreferredGroupOfFive
	}
	return nil
}

type studentView struct {
	grouping.Student
	IncompatibleWith []int64 `json:"incompatible_with"`
}

func (s *server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	roster, _, err := s.rosters.LoadRoster(r.Context(), classroomID)
	if errors.Is(err, errClassroomNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "list students", err, "classroom_id", classroomID)
		return
	}
	writeJSON(w, http.StatusOK, studentViews(roster))
}

func studentViews(roster grouping.Roster) []studentView {
	views := make([]studentView, len(roster.Students))
	for i, st := range roster.Students {
		views[i] = studentView{Student: st, IncompatibleWith: roster.Incompatible.Of(st.ID)}
		if views[i].IncompatibleWith == nil {
			views[i].IncompatibleWith = []int64{}
		}
	}
	return views
}

func (s *server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	var body studentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Name == nil {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	var st grouping.Student
	if err := body.apply(&st); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := getClassroom(r.Context(), s.db, classroomID); errors.Is(err, errClassroomNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	} else if err != nil {
		s.serverError(w, "create student", err, "classroom_id", classroomID)
		return
	}

	ids, err := insertStudents(r.Context(), s.db, classroomID, []grouping.Student{st})
	if err != nil {
		s.serverError(w, "create student", err, "classroom_id", classroomID)
		return
	}
	st.ID = ids[0]
	writeJSON(w, http.StatusCreated, st)
}

func (s *server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	studentID, ok := pathID(w, r, "studentID")
	if !ok {
		return
	}
	var body studentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	st, err := scanStudent(s.db.QueryRowContext(r.Context(), `
		SELECT id, name, gender, ability_level, front_seat_needed, preferred_group_of_five
		FROM students WHERE id = $1 AND classroom_id = $2`, studentID, classroomID))
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, errStudentNotFound.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "update student", err, "student_id", studentID)
		return
	}
	if err := body.apply(&st); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err = s.db.ExecContext(r.Context(), `
		UPDATE students SET name = $1, gender = $2, ability_level = $3,
			front_seat_needed = $4, preferred_group_of_five = $5
		WHERE id = $6`,
		st.Name, st.Gender.String(), st.Ability.String(),
		st.FrontSeatNeeded, st.PreferredGroupOfFive, st.ID)
	if err != nil {
		s.serverError(w, "update student", err, "student_id", studentID)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	studentID, ok := pathID(w, r, "studentID")
	if !ok {
		return
	}
	result, err := s.db.ExecContext(r.Context(), "DELETE FROM students WHERE id = $1 AND classroom_id = $2", studentID, classroomID)
	if err != nil {
		s.serverError(w, "delete student", err, "student_id", studentID)
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		http.Error(w, errStudentNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pairBody struct {
	Student1ID int64 `json:"student_1_id"`
	Student2ID int64 `json:"student_2_id"`
}

func decodePair(w http.ResponseWriter, r *http.Request) (pairBody, bool) {
	var body pairBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return body, false
	}
	if body.Student1ID == body.Student2ID {
		http.Error(w, "a student cannot be incompatible with themselves", http.StatusBadRequest)
		return body, false
	}
	return body, true
}

func (s *server) handleAddIncompatibility(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	body, ok := decodePair(w, r)
	if !ok {
		return
	}
	err := addIncompatibility(r.Context(), s.db, classroomID, body.Student1ID, body.Student2ID)
	if errors.Is(err, errStudentNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, "add incompatibility", err, "classroom_id", classroomID)
		return
	}
	s.log.Info("incompatibility added", "classroom_id", classroomID,
		"student_1_id", body.Student1ID, "student_2_id", body.Student2ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRemoveIncompatibility(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	body, ok := decodePair(w, r)
	if !ok {
		return
	}
	found, err := removeIncompatibility(r.Context(), s.db, classroomID, body.Student1ID, body.Student2ID)
	if err != nil {
		s.serverError(w, "remove incompatibility", err, "classroom_id", classroomID)
		return
	}
	if !found {
		http.Error(w, "incompatibility not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// insertStudents adds students to a classroom in one transaction and returns
// their new ids in order.
func insertStudents(ctx context.Context, db *sql.DB, classroomID int64, students []grouping.Student) ([]int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(students))
	for _, st := range students {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO students (classroom_id, name, gender, ability_level, front_seat_needed, preferred_group_of_five)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			classroomID, st.Name, st.Gender.String(), st.Ability.String(),
			st.FrontSeatNeeded, st.PreferredGroupOfFive).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, tx.Commit()
}
