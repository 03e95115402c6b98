package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pavelanni/gradeboard/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exercise_results (
		student_id TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		filename TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 0,
		verifications_passed INTEGER NOT NULL DEFAULT 0,
		verifications_total INTEGER NOT NULL DEFAULT 0,
		method_signature TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (student_id, exercise_id),
		FOREIGN KEY (student_id) REFERENCES students(id)
	);

	CREATE TABLE IF NOT EXISTS check_outcomes (
		student_id TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		check_name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		PRIMARY KEY (student_id, exercise_id, check_name),
		FOREIGN KEY (student_id, exercise_id) REFERENCES exercise_results(student_id, exercise_id)
	);

	CREATE TABLE IF NOT EXISTS problems (
		student_id TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (student_id, exercise_id, position),
		FOREIGN KEY (student_id, exercise_id) REFERENCES exercise_results(student_id, exercise_id)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceRecords swaps the stored students for the given ones in a single
// transaction and forgets the snapshot hash.
func (s *Store) ReplaceRecords(students []model.Student) error {
	return s.ReplaceSnapshot(students, "")
}

// ReplaceSnapshot swaps the stored students and records hash as the content
// hash of the new snapshot, in the same transaction. An empty hash clears it.
func (s *Store) ReplaceSnapshot(students []model.Student, hash string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"problems", "check_outcomes", "exercise_results", "students"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, st := range students {
		if _, err := tx.Exec(
			`INSERT INTO students (id, position, name) VALUES (?, ?, ?)`,
			st.ID, i, st.Name,
		); err != nil {
			return fmt.Errorf("insert student %s: %w", st.ID, err)
		}
		for j, e := range st.Exercises {
			if _, err := tx.Exec(
				`INSERT INTO exercise_results (student_id, exercise_id, position, title, filename, score,
				 verifications_passed, verifications_total, method_signature)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				st.ID, e.ID, j, e.Title, e.Filename, int(e.Score),
				e.VerificationsPassed, e.VerificationsTotal, e.Details.MethodSignatureFound,
			); err != nil {
				return fmt.Errorf("insert exercise %s/%s: %w", st.ID, e.ID, err)
			}
			for name, outcome := range e.Checks.Map() {
				if _, err := tx.Exec(
					`INSERT INTO check_outcomes (student_id, exercise_id, check_name, outcome) VALUES (?, ?, ?, ?)`,
					st.ID, e.ID, name, outcome,
				); err != nil {
					return fmt.Errorf("insert check %s for %s/%s: %w", name, st.ID, e.ID, err)
				}
			}
			for k, p := range e.Details.Problems {
				if _, err := tx.Exec(
					`INSERT INTO problems (student_id, exercise_id, position, text) VALUES (?, ?, ?, ?)`,
					st.ID, e.ID, k, p,
				); err != nil {
					return fmt.Errorf("insert problem for %s/%s: %w", st.ID, e.ID, err)
				}
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM metadata WHERE key = ?`, snapshotHashKey); err != nil {
		return fmt.Errorf("clear snapshot hash: %w", err)
	}
	if hash != "" {
		if _, err := tx.Exec(
			`INSERT INTO metadata (key, value) VALUES (?, ?)`, snapshotHashKey, hash,
		); err != nil {
			return fmt.Errorf("record snapshot hash: %w", err)
		}
	}

	return tx.Commit()
}

// LoadRecords returns all students with their results in stored order.
func (s *Store) LoadRecords(ctx context.Context) ([]model.Student, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM students ORDER BY position`)
	if err != nil {
		return nil, err
	}
	var students []model.Student
	index := make(map[string]int)
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			rows.Close()
			return nil, err
		}
		index[st.ID] = len(students)
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	results, err := s.loadResults(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		i, ok := index[r.studentID]
		if !ok {
			continue
		}
		students[i].Exercises = append(students[i].Exercises, r.result)
	}
	return students, nil
}

type storedResult struct {
	studentID string
	result    model.ExerciseResult
}

func (s *Store) loadResults(ctx context.Context) ([]storedResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.student_id, r.exercise_id, r.title, r.filename, r.score,
		        r.verifications_passed, r.verifications_total, r.method_signature
		 FROM exercise_results r JOIN students s ON s.id = r.student_id
		 ORDER BY s.position, r.position`)
	if err != nil {
		return nil, err
	}
	var results []storedResult
	for rows.Next() {
		var r storedResult
		var score int
		e := &r.result
		if err := rows.Scan(&r.studentID, &e.ID, &e.Title, &e.Filename, &score,
			&e.VerificationsPassed, &e.VerificationsTotal, &e.Details.MethodSignatureFound); err != nil {
			rows.Close()
			return nil, err
		}
		e.Score = model.Score(score)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		r := &results[i]
		checks, err := s.getChecks(ctx, r.studentID, r.result.ID)
		if err != nil {
			return nil, err
		}
		r.result.Checks = checks
		problems, err := s.getProblems(ctx, r.studentID, r.result.ID)
		if err != nil {
			return nil, err
		}
		r.result.Details.Problems = problems
	}
	return results, nil
}

func (s *Store) getChecks(ctx context.Context, studentID, exerciseID string) (model.Checks, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT check_name, outcome FROM check_outcomes WHERE student_id = ? AND exercise_id = ?`,
		studentID, exerciseID)
	if err != nil {
		return model.Checks{}, err
	}
	defer rows.Close()
	m := make(map[string]model.Outcome)
	for rows.Next() {
		var name, outcome string
		if err := rows.Scan(&name, &outcome); err != nil {
			return model.Checks{}, err
		}
		m[name] = model.ParseOutcome(outcome)
	}
	return model.ChecksFromMap(m), rows.Err()
}

func (s *Store) getProblems(ctx context.Context, studentID, exerciseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM problems WHERE student_id = ? AND exercise_id = ? ORDER BY position`,
		studentID, exerciseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var problems []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, rows.Err()
}

// StudentCount returns the number of students in the database.
func (s *Store) StudentCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}
