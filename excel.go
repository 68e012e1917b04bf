package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"seating/grouping"
)

const groupsSheet = "Groups"

var rosterColumns = map[string]string{
	"name":                    "name",
	"student":                 "name",
	"gender":                  "gender",
	"ability":                 "ability",
	"ability level":           "ability",
	"front seat":              "front",
	"front seat needed":       "front",
	"group of five":           "five",
	"preferred group of five": "five",
}

// parseRosterSheet reads students from the first sheet of an xlsx workbook.
// The first row is a header naming the columns; only Name is required.
// Rows with an empty name are skipped.
func parseRosterSheet(r io.Reader) ([]grouping.Student, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		if key, ok := rosterColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[key] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, errors.New("header has no Name column")
	}

	cell := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var students []grouping.Student
	for n, row := range rows[1:] {
		name := cell(row, "name")
		if name == "" {
			continue
		}
		line := n + 2
		st := grouping.Student{Name: name}
		if st.Gender, err = grouping.ParseGender(cell(row, "gender")); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if st.Ability, err = grouping.ParseAbilityLevel(cell(row, "ability")); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if st.FrontSeatNeeded, err = parseFlag(cell(row, "front")); err != nil {
			return nil, fmt.Errorf("row %d front seat: %w", line, err)
		}
		if st.PreferredGroupOfFive, err = parseFlag(cell(row, "five")); err != nil {
			return nil, fmt.Errorf("row %d group of five: %w", line, err)
		}
		students = append(students, st)
	}
	return students, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "no", "n", "-":
		return false, nil
	case "yes", "y", "x":
		return true, nil
	}
	return strconv.ParseBool(s)
}

// writeGroupsWorkbook lays groups out one student per row, grouped by group
// number.
func writeGroupsWorkbook(groups []grouping.Group) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", groupsSheet); err != nil {
		return nil, err
	}
	header := []any{"Group", "Front Group", "Name", "Gender", "Ability Level", "Front Seat", "Group of Five"}
	if err := f.SetSheetRow(groupsSheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, g := range groups {
		for _, m := range g.Members {
			cellName, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			values := []any{g.Number, yesNo(g.IsFrontGroup), m.Name, m.Gender.String(), m.Ability.String(),
				yesNo(m.FrontSeatNeeded), yesNo(m.PreferredGroupOfFive)}
			if err := f.SetSheetRow(groupsSheet, cellName, &values); err != nil {
				return nil, err
			}
			row++
		}
	}
	return f.WriteToBuffer()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (s *server) handleImportRoster(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	students, err := parseRosterSheet(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(students) == 0 {
		http.Error(w, "no students found in sheet", http.StatusBadRequest)
		return
	}

	if _, err := getClassroom(r.Context(), s.db, classroomID); errors.Is(err, errClassroomNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	} else if err != nil {
		s.serverError(w, "import roster", err, "classroom_id", classroomID)
		return
	}

	ids, err := insertStudents(r.Context(), s.db, classroomID, students)
	if err != nil {
		s.serverError(w, "import roster", err, "classroom_id", classroomID)
		return
	}
	for i := range students {
		students[i].ID = ids[i]
	}
	s.log.Info("roster imported", "classroom_id", classroomID, "students", len(students))
	writeJSON(w, http.StatusCreated, students)
}

func (s *server) handleExportGroups(w http.ResponseWriter, r *http.Request) {
	classroomID, ok := pathID(w, r, "classroomID")
	if !ok {
		return
	}
	groups, err := s.rosters.LatestGroups(r.Context(), classroomID)
	if err != nil {
		s.serverError(w, "export groups", err, "classroom_id", classroomID)
		return
	}
	if len(groups) == 0 {
		http.Error(w, "no saved groups", http.StatusNotFound)
		return
	}
	sortMembers(groups)

	buf, err := writeGroupsWorkbook(groups)
	if err != nil {
		s.serverError(w, "export groups", err, "classroom_id", classroomID)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="classroom-%d-groups.xlsx"`, classroomID))
	w.Write(buf.Bytes())
}
