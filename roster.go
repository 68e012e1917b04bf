package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"seating/grouping"
)

var errClassroomNotFound = errors.New("classroom not found")

type classroom struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	MaximumFrontGroups int    `json:"maximum_front_groups"`
}

const defaultFrontGroups = 10

func validFrontGroups(n int) bool {
	return n > 0 && n < 10
}

func getClassroom(ctx context.Context, db *sql.DB, classroomID int64) (classroom, error) {
	c := classroom{ID: classroomID}
	err := db.QueryRowContext(ctx, "SELECT title, maximum_front_groups FROM classrooms WHERE id = $1", classroomID).
		Scan(&c.Title, &c.MaximumFrontGroups)
	if errors.Is(err, sql.ErrNoRows) {
		return c, errClassroomNotFound
	}
	return c, err
}

func scanStudent(row interface{ Scan(...any) error }) (grouping.Student, error) {
	var s grouping.Student
	var gender, ability string
	if err := row.Scan(&s.ID, &s.Name, &gender, &ability, &s.FrontSeatNeeded, &s.PreferredGroupOfFive); err != nil {
		return s, err
	}
	var err error
	if s.Gender, err = grouping.ParseGender(gender); err != nil {
		return s, fmt.Errorf("student %d: %w", s.ID, err)
	}
	if s.Ability, err = grouping.ParseAbilityLevel(ability); err != nil {
		return s, fmt.Errorf("student %d: %w", s.ID, err)
	}
	return s, nil
}

// loadRoster reads a classroom's students and the incompatibilities among them.
func loadRoster(ctx context.Context, db *sql.DB, classroomID int64) (grouping.Roster, int, error) {
	c, err := getClassroom(ctx, db, classroomID)
	if err != nil {
		return grouping.Roster{}, 0, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, gender, ability_level, front_seat_needed, preferred_group_of_five
		FROM students WHERE classroom_id = $1 ORDER BY id`, classroomID)
	if err != nil {
		return grouping.Roster{}, 0, err
	}
	defer rows.Close()

	roster := grouping.Roster{Incompatible: grouping.NewRelation()}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return grouping.Roster{}, 0, err
		}
		roster.Students = append(roster.Students, s)
	}
	if err := rows.Err(); err != nil {
		return grouping.Roster{}, 0, err
	}

	erows, err := db.QueryContext(ctx, `
		SELECT i.student_1_id, i.student_2_id
		FROM incompatible_students i
		JOIN students a ON a.id = i.student_1_id
		JOIN students b ON b.id = i.student_2_id
		WHERE a.classroom_id = $1 AND b.classroom_id = $1`, classroomID)
	if err != nil {
		return grouping.Roster{}, 0, err
	}
	defer erows.Close()
	for erows.Next() {
		var a, b int64
		if err := erows.Scan(&a, &b); err != nil {
			return grouping.Roster{}, 0, err
		}
		roster.Incompatible.Add(a, b)
	}
	return roster, c.MaximumFrontGroups, erows.Err()
}

// saveGroups stores one partition of a classroom. Earlier partitions stay as
// history; listGroups returns the newest.
func saveGroups(ctx context.Context, db *sql.DB, classroomID int64, groups []grouping.Group) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, g := range groups {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO seating_groups (id, classroom_id, group_number, is_front_group, date_created)
			VALUES ($1, $2, $3, $4, $5)`, g.ID, classroomID, g.Number, g.IsFrontGroup, g.DateCreated); err != nil {
			return fmt.Errorf("insert group %d: %w", g.Number, err)
		}
		ids := make([]int64, len(g.Members))
		for i, m := range g.Members {
			ids[i] = m.ID
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO group_members (group_id, student_id)
			SELECT $1, unnest($2::bigint[])`, g.ID, pq.Array(ids)); err != nil {
			return fmt.Errorf("insert members of group %d: %w", g.Number, err)
		}
	}
	return tx.Commit()
}

// listGroups returns the newest saved partition of a classroom.
func listGroups(ctx context.Context, db *sql.DB, classroomID int64) ([]grouping.Group, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT g.id, g.group_number, g.is_front_group, g.date_created,
			s.id, s.name, s.gender, s.ability_level, s.front_seat_needed, s.preferred_group_of_five
		FROM seating_groups g
		JOIN group_members gm ON gm.group_id = g.id
		JOIN students s ON s.id = gm.student_id
		WHERE g.classroom_id = $1
			AND g.date_created = (SELECT max(date_created) FROM seating_groups WHERE classroom_id = $1)
		ORDER BY g.group_number, s.name`, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []grouping.Group
	for rows.Next() {
		var g grouping.Group
		var created time.Time
		var s grouping.Student
		var gender, ability string
		if err := rows.Scan(&g.ID, &g.Number, &g.IsFrontGroup, &created,
			&s.ID, &s.Name, &gender, &ability, &s.FrontSeatNeeded, &s.PreferredGroupOfFive); err != nil {
			return nil, err
		}
		if s.Gender, err = grouping.ParseGender(gender); err != nil {
			return nil, fmt.Errorf("student %d: %w", s.ID, err)
		}
		if s.Ability, err = grouping.ParseAbilityLevel(ability); err != nil {
			return nil, fmt.Errorf("student %d: %w", s.ID, err)
		}
		if n := len(groups); n == 0 || groups[n-1].ID != g.ID {
			g.DateCreated = created
			groups = append(groups, g)
		}
		last := &groups[len(groups)-1]
		last.Members = append(last.Members, s)
	}
	return groups, rows.Err()
}

// addIncompatibility writes both directions of the edge in one transaction.
func addIncompatibility(ctx context.Context, db *sql.DB, classroomID, a, b int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, "SELECT count(*) FROM students WHERE classroom_id = $1 AND id = ANY($2)",
		classroomID, pq.Array([]int64{a, b})).Scan(&n); err != nil {
		return err
	}
	if n != 2 {
		return errStudentNotFound
	}
	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO incompatible_students (student_1_id, student_2_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, pair[0], pair[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// removeIncompatibility deletes both directions. It reports whether an edge existed.
func removeIncompatibility(ctx context.Context, db *sql.DB, classroomID, a, b int64) (bool, error) {
	result, err := db.ExecContext(ctx, `
		DELETE FROM incompatible_students
		WHERE ((student_1_id = $1 AND student_2_id = $2) OR (student_1_id = $2 AND student_2_id = $1))
			AND student_1_id IN (SELECT id FROM students WHERE classroom_id = $3)`, a, b, classroomID)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}
