package model

import (
	"context"
	"errors"
	"testing"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    Score
		wantErr bool
	}{
		{"8.6", 86, false},
		{"8.6/10", 86, false},
		{" 10.0/10 ", 100, false},
		{"17.2/20", 86, false},
		{"0", 0, false},
		{"5.75", 58, false},
		{"", 0, true},
		{"abc", 0, true},
		{"8/0", 0, true},
		{"8/x", 0, true},
		{"11", 0, true},
		{"-1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScore(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidScore) {
					t.Fatalf("ParseScore(%q) error = %v, want ErrInvalidScore", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseScore(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestScoreString(t *testing.T) {
	tests := map[Score]string{
		0:   "0.0/10",
		57:  "5.7/10",
		86:  "8.6/10",
		100: "10.0/10",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Score(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestScorePassing(t *testing.T) {
	if Score(69).Passing() {
		t.Error("6.9 should not pass")
	}
	if !Score(70).Passing() {
		t.Error("7.0 should pass")
	}
	if got := Score(86).Points(); got != 8.6 {
		t.Errorf("Points() = %v, want 8.6", got)
	}
}

func TestCheckNames(t *testing.T) {
	for _, c := range CheckNames {
		got, ok := ParseCheckName(c.String())
		if !ok || got != c {
			t.Errorf("ParseCheckName(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCheckName("style"); ok {
		t.Error("unknown check name accepted")
	}
	if got, _ := ParseCheckName(" Operators "); got != CheckOperators {
		t.Errorf("expected case-insensitive match, got %v", got)
	}
	if s := CheckName(42).String(); s != "check(42)" {
		t.Errorf("out of range name = %q", s)
	}
}

func TestParseOutcome(t *testing.T) {
	tests := map[string]Outcome{
		"pass":    OutcomePass,
		"TRUE":    OutcomePass,
		"fail":    OutcomeFail,
		"false":   OutcomeFail,
		"warning": OutcomeWarning,
		"warn":    OutcomeWarning,
		"":        OutcomeUnknown,
		"maybe":   OutcomeUnknown,
	}
	for in, want := range tests {
		if got := ParseOutcome(in); got != want {
			t.Errorf("ParseOutcome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChecks(t *testing.T) {
	cs := ChecksFromMap(map[string]Outcome{
		"syntax":  OutcomePass,
		"naming":  OutcomeFail,
		"bogus":   OutcomePass,
		"method":  OutcomePass,
		"pattern": OutcomeFail,
	})
	if got := cs.Get(CheckSyntax); got != OutcomePass {
		t.Errorf("syntax = %q", got)
	}
	if got := cs.Get(CheckPatterns); got != OutcomeUnknown {
		t.Errorf("patterns = %q, want unknown", got)
	}
	if n := cs.CountOutcome(OutcomePass); n != 2 {
		t.Errorf("pass count = %d, want 2", n)
	}
	if n := cs.CountOutcome(OutcomeUnknown); n != 3 {
		t.Errorf("unknown count = %d, want 3", n)
	}
	m := cs.Map()
	if len(m) != 3 || m["naming"] != OutcomeFail {
		t.Errorf("Map() = %v", m)
	}

	updated := cs.With(CheckPatterns, OutcomeWarning)
	if cs.Get(CheckPatterns) != OutcomeUnknown {
		t.Error("With modified the receiver")
	}
	if updated.Get(CheckPatterns) != OutcomeWarning {
		t.Error("With did not set the outcome")
	}
	if got := cs.With(CheckName(-1), OutcomePass); got != cs {
		t.Error("out of range With changed checks")
	}
}

func TestExerciseValidate(t *testing.T) {
	tests := []struct {
		name    string
		e       ExerciseResult
		wantErr bool
	}{
		{"ok", ExerciseResult{ID: "e", Score: 86, VerificationsPassed: 6, VerificationsTotal: 7}, false},
		{"zero", ExerciseResult{ID: "e"}, false},
		{"no id", ExerciseResult{ID: " "}, true},
		{"passed above total", ExerciseResult{ID: "e", VerificationsPassed: 8, VerificationsTotal: 7}, true},
		{"negative", ExerciseResult{ID: "e", VerificationsPassed: -1}, true},
		{"score too high", ExerciseResult{ID: "e", Score: 101}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.e.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestStudentValidate(t *testing.T) {
	dup := Student{ID: "1", Name: "A", Exercises: []ExerciseResult{{ID: "e"}, {ID: "e"}}}
	if err := dup.Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("duplicate exercise: got %v", err)
	}
	if err := (Student{Name: "A"}).Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("missing id: got %v", err)
	}
	if err := (Student{ID: "1"}).Validate(); err != nil {
		t.Errorf("student without exercises: %v", err)
	}
}

func TestStudentClone(t *testing.T) {
	orig := Student{ID: "1", Exercises: []ExerciseResult{
		{ID: "e", Details: Details{Problems: []string{"a"}}},
	}}
	c := orig.Clone()
	c.Exercises[0].Title = "changed"
	c.Exercises[0].Details.Problems[0] = "changed"

	if orig.Exercises[0].Title != "" || orig.Exercises[0].Details.Problems[0] != "a" {
		t.Errorf("clone shares memory with original: %+v", orig)
	}
}

func TestBasePathContext(t *testing.T) {
	ctx := context.Background()
	if got := BasePathFromContext(ctx); got != "" {
		t.Errorf("empty context returned %q", got)
	}
	ctx = ContextWithBasePath(ctx, "/td3")
	if got := BasePathFromContext(ctx); got != "/td3" {
		t.Errorf("BasePathFromContext = %q, want /td3", got)
	}
}
