package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/pavelanni/gradeboard/internal/fixture"
	"github.com/pavelanni/gradeboard/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmptyStore(t *testing.T) {
	s := newTestStore(t)

	count, err := s.StudentCount()
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 students, got %d", count)
	}

	students, err := s.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(students) != 0 {
		t.Fatalf("expected no students, got %d", len(students))
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want, err := fixture.Default()
	if err != nil {
		t.Fatalf("fixture.Default: %v", err)
	}
	if err := s.ReplaceRecords(want); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}

	got, err := s.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestReplaceRecordsKeepsOrder(t *testing.T) {
	s := newTestStore(t)

	first := []model.Student{
		{ID: "b", Name: "Zoé", Exercises: []model.ExerciseResult{
			{ID: "z", Title: "Last", Score: 40, VerificationsPassed: 2, VerificationsTotal: 7},
			{ID: "a", Title: "First", Score: 90, VerificationsPassed: 7, VerificationsTotal: 7},
		}},
		{ID: "a", Name: "Albert"},
	}
	if err := s.ReplaceRecords(first); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	got, err := s.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("students out of order: %+v", got)
	}
	if got[0].Exercises[0].ID != "z" || got[0].Exercises[1].ID != "a" {
		t.Errorf("exercises out of order: %+v", got[0].Exercises)
	}
	// Checks never written come back unknown.
	if o := got[0].Exercises[0].Checks.Get(model.CheckSyntax); o != model.OutcomeUnknown {
		t.Errorf("expected unknown outcome, got %q", o)
	}

	// A second replace drops the previous data.
	second := []model.Student{{ID: "c", Name: "Chloé"}}
	if err := s.ReplaceRecords(second); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	count, err := s.StudentCount()
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 student after replace, got %d", count)
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetMetadata("missing")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}

	if err := s.SetMetadata("k", "one"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := s.SetMetadata("k", "two"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	v, _ = s.GetMetadata("k")
	if v != "two" {
		t.Errorf("expected 'two', got %q", v)
	}
}

func TestSnapshotHash(t *testing.T) {
	s := newTestStore(t)

	hash, err := s.GetSnapshotHash()
	if err != nil {
		t.Fatalf("GetSnapshotHash: %v", err)
	}
	if hash != "" {
		t.Fatalf("expected no hash, got %q", hash)
	}

	a := []model.Student{{ID: "a", Name: "ALICE"}}
	b := []model.Student{{ID: "b", Name: "BOB"}}
	if err := s.ReplaceSnapshot(a, "hash-a"); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}
	if err := s.ReplaceSnapshot(b, "hash-b"); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}
	hash, _ = s.GetSnapshotHash()
	if hash != "hash-b" {
		t.Errorf("expected hash of the latest snapshot, got %q", hash)
	}

	if err := s.ReplaceRecords(a); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	hash, _ = s.GetSnapshotHash()
	if hash != "" {
		t.Errorf("expected ReplaceRecords to clear the hash, got %q", hash)
	}
}
