// Package dashboard holds the grading dashboard core: an immutable record
// store, the view state with its pure update functions, and the projector
// that derives the render model from both.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/pavelanni/gradeboard/internal/model"
)

var (
	// ErrUnavailable wraps any failure to provision records.
	ErrUnavailable = errors.New("records unavailable")
	// ErrUnknownPair is returned when selecting a pair absent from the records.
	ErrUnknownPair = errors.New("unknown student/exercise pair")
	// ErrUnknownExercise is returned when filtering on an exercise absent from the catalog.
	ErrUnknownExercise = errors.New("unknown exercise")
)

// Loader provisions the initial student records.
type Loader interface {
	LoadRecords(ctx context.Context) ([]model.Student, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]model.Student, error)

// LoadRecords calls f.
func (f LoaderFunc) LoadRecords(ctx context.Context) ([]model.Student, error) {
	return f(ctx)
}

// CatalogEntry is one distinct exercise across all students.
type CatalogEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Records is a read-only snapshot of students and their results.
// It is safe for concurrent use.
type Records struct {
	students []model.Student
	index    map[string]int // student ID -> position
	catalog  []CatalogEntry
}

// NewRecords validates students and takes a deep copy of them.
func NewRecords(students []model.Student) (*Records, error) {
	r := &Records{
		students: make([]model.Student, 0, len(students)),
		index:    make(map[string]int, len(students)),
	}
	seenExercise := make(map[string]bool)
	for _, s := range students {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("%w: student %s listed twice", model.ErrInvalidRecord, s.ID)
		}
		r.index[s.ID] = len(r.students)
		r.students = append(r.students, s.Clone())
		for _, e := range s.Exercises {
			if !seenExercise[e.ID] {
				seenExercise[e.ID] = true
				r.catalog = append(r.catalog, CatalogEntry{ID: e.ID, Title: e.Title})
			}
		}
	}
	return r, nil
}

// Load provisions records through l. Any failure is wrapped in ErrUnavailable.
func Load(ctx context.Context, l Loader) (*Records, error) {
	students, err := l.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	r, err := NewRecords(students)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return r, nil
}

// Students returns a copy of the students in store order.
func (r *Records) Students() []model.Student {
	out := make([]model.Student, len(r.students))
	for i, s := range r.students {
		out[i] = s.Clone()
	}
	return out
}

// Len returns the number of students.
func (r *Records) Len() int {
	return len(r.students)
}

// ResultCount returns the number of exercise results across all students.
func (r *Records) ResultCount() int {
	n := 0
	for _, s := range r.students {
		n += len(s.Exercises)
	}
	return n
}

// Catalog returns the distinct exercises in first-seen order.
func (r *Records) Catalog() []CatalogEntry {
	return append([]CatalogEntry(nil), r.catalog...)
}

// HasExercise reports whether any student has a result for exerciseID.
func (r *Records) HasExercise(exerciseID string) bool {
	for _, c := range r.catalog {
		if c.ID == exerciseID {
			return true
		}
	}
	return false
}

// Lookup resolves a selection to its student and exercise result.
func (r *Records) Lookup(sel model.Selection) (model.Student, model.ExerciseResult, bool) {
	i, ok := r.index[sel.StudentID]
	if !ok {
		return model.Student{}, model.ExerciseResult{}, false
	}
	s := r.students[i]
	for _, e := range s.Exercises {
		if e.ID == sel.ExerciseID {
			return s.Clone(), e.Clone(), true
		}
	}
	return model.Student{}, model.ExerciseResult{}, false
}

// Contains reports whether sel names an existing pair.
func (r *Records) Contains(sel model.Selection) bool {
	_, _, ok := r.Lookup(sel)
	return ok
}
