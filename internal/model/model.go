package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRecord is returned when a student or exercise record breaks a data invariant.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidScore is returned when a score string cannot be parsed.
	ErrInvalidScore = errors.New("invalid score")
)

// CheckName identifies one verification applied to a submission.
type CheckName int

const (
	CheckSyntax CheckName = iota
	CheckMethod
	CheckStructure
	CheckNaming
	CheckOperators
	CheckPatterns

	numChecks
)

// CheckNames lists every check in display order. Every record reports this same set.
var CheckNames = [numChecks]CheckName{
	CheckSyntax,
	CheckMethod,
	CheckStructure,
	CheckNaming,
	CheckOperators,
	CheckPatterns,
}

var checkKeys = [numChecks]string{
	CheckSyntax:    "syntax",
	CheckMethod:    "method",
	CheckStructure: "structure",
	CheckNaming:    "naming",
	CheckOperators: "operators",
	CheckPatterns:  "patterns",
}

// String returns the wire key of the check (e.g. "operators").
func (c CheckName) String() string {
	if c < 0 || c >= numChecks {
		return fmt.Sprintf("check(%d)", int(c))
	}
	return checkKeys[c]
}

// ParseCheckName maps a wire key to a CheckName.
func ParseCheckName(key string) (CheckName, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, k := range checkKeys {
		if k == key {
			return CheckName(i), true
		}
	}
	return 0, false
}

// Outcome is the result of a single check.
type Outcome string

const (
	OutcomeUnknown Outcome = ""
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeWarning Outcome = "warning"
)

// OutcomeFromBool converts the boolean form used by grading exports.
func OutcomeFromBool(ok bool) Outcome {
	if ok {
		return OutcomePass
	}
	return OutcomeFail
}

// ParseOutcome accepts "pass", "fail", "warning" (and "true"/"false").
// Anything else is OutcomeUnknown.
func ParseOutcome(s string) Outcome {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "true", "ok":
		return OutcomePass
	case "fail", "false":
		return OutcomeFail
	case "warning", "warn":
		return OutcomeWarning
	default:
		return OutcomeUnknown
	}
}

// Checks holds one outcome per known check, indexed by CheckName.
// The zero value reports every check as unknown.
type Checks [numChecks]Outcome

// Get returns the outcome for c, or OutcomeUnknown for an out-of-range name.
func (cs Checks) Get(c CheckName) Outcome {
	if c < 0 || c >= numChecks {
		return OutcomeUnknown
	}
	return cs[c]
}

// With returns a copy of cs with c set to o.
func (cs Checks) With(c CheckName, o Outcome) Checks {
	if c >= 0 && c < numChecks {
		cs[c] = o
	}
	return cs
}

// CountOutcome returns how many checks have outcome o.
func (cs Checks) CountOutcome(o Outcome) int {
	n := 0
	for _, got := range cs {
		if got == o {
			n++
		}
	}
	return n
}

// ChecksFromMap builds Checks from a keyed source. Keys that are not known
// check names are ignored; known names absent from m stay OutcomeUnknown.
func ChecksFromMap(m map[string]Outcome) Checks {
	var cs Checks
	for k, o := range m {
		if c, ok := ParseCheckName(k); ok {
			cs[c] = o
		}
	}
	return cs
}

// Map returns the checks keyed by wire name, omitting unknown outcomes.
func (cs Checks) Map() map[string]Outcome {
	m := make(map[string]Outcome, numChecks)
	for _, c := range CheckNames {
		if o := cs[c]; o != OutcomeUnknown {
			m[c.String()] = o
		}
	}
	return m
}

// ScoreMax is the top of the grading scale.
const ScoreMax Score = 100

// PassingScore is the lowest score rendered as a success.
const PassingScore Score = 70

// Score is a grade out of 10, stored in tenths of a point (86 = 8.6/10).
type Score int

// ScoreFromFloat rounds points (out of 10) to the nearest tenth.
func ScoreFromFloat(points float64) Score {
	return Score(math.Round(points * 10))
}

// ParseScore accepts "8.6", "8.6/10" and "17.2/20"; the result is scaled to 10.
func ParseScore(s string) (Score, error) {
	s = strings.TrimSpace(s)
	num, den, hasDen := strings.Cut(s, "/")
	points, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, s)
	}
	if hasDen {
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidScore, s)
		}
		points = points * 10 / d
	}
	sc := ScoreFromFloat(points)
	if sc < 0 || sc > ScoreMax {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidScore, s)
	}
	return sc, nil
}

// Points returns the score as a float out of 10.
func (s Score) Points() float64 {
	return float64(s) / 10
}

// Passing reports whether the score reaches PassingScore.
func (s Score) Passing() bool {
	return s >= PassingScore
}

// String formats the score as "8.6/10".
func (s Score) String() string {
	return fmt.Sprintf("%d.%d/10", int(s)/10, int(s)%10)
}

// Details holds optional findings reported by the grader.
type Details struct {
	MethodSignatureFound string   `json:"method_signature_found,omitempty" yaml:"method_signature_found,omitempty"`
	Problems             []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// ExerciseResult is one student's graded attempt at one exercise.
type ExerciseResult struct {
	ID                  string
	Title               string
	Filename            string
	Score               Score
	VerificationsPassed int
	VerificationsTotal  int
	Checks              Checks
	Details             Details
}

// Validate checks the invariants of a single result.
func (e ExerciseResult) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: exercise without id", ErrInvalidRecord)
	}
	if e.VerificationsPassed < 0 || e.VerificationsTotal < 0 {
		return fmt.Errorf("%w: exercise %s has negative verification counts", ErrInvalidRecord, e.ID)
	}
	if e.VerificationsPassed > e.VerificationsTotal {
		return fmt.Errorf("%w: exercise %s passed %d of %d verifications",
			ErrInvalidRecord, e.ID, e.VerificationsPassed, e.VerificationsTotal)
	}
	if e.Score < 0 || e.Score > ScoreMax {
		return fmt.Errorf("%w: exercise %s score %d out of range", ErrInvalidRecord, e.ID, int(e.Score))
	}
	return nil
}

// Clone returns a deep copy.
func (e ExerciseResult) Clone() ExerciseResult {
	if e.Details.Problems != nil {
		e.Details.Problems = append([]string(nil), e.Details.Problems...)
	}
	return e
}

// Student holds a student's exercise results in display order.
type Student struct {
	ID        string
	Name      string
	Exercises []ExerciseResult
}

// Validate checks the student and every exercise result.
func (s Student) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: student %q without id", ErrInvalidRecord, s.Name)
	}
	seen := make(map[string]bool, len(s.Exercises))
	for _, e := range s.Exercises {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("student %s: %w", s.ID, err)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: student %s has exercise %s twice", ErrInvalidRecord, s.ID, e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// Clone returns a deep copy.
func (s Student) Clone() Student {
	if s.Exercises != nil {
		ex := make([]ExerciseResult, len(s.Exercises))
		for i, e := range s.Exercises {
			ex[i] = e.Clone()
		}
		s.Exercises = ex
	}
	return s
}

// Category classifies an exercise for the dashboard counters.
type Category string

const (
	CategoryCompleted  Category = "completed"
	CategoryInProgress Category = "in_progress"
	CategoryFailed     Category = "failed"
	CategoryUntried    Category = "untried"
)

// Selection identifies one (student, exercise) pair by key.
type Selection struct {
	StudentID  string `json:"student_id"`
	ExerciseID string `json:"exercise_id"`
}

// ViewState is the complete session-local UI state.
type ViewState struct {
	SearchQuery string `json:"search_query"`
	// ExerciseFilter restricts rows to one exercise ID; empty shows all.
	ExerciseFilter string     `json:"exercise_filter,omitempty"`
	Selection      *Selection `json:"selection,omitempty"`
}

// DashboardConfig holds runtime parameters set via CLI flags.
type DashboardConfig struct {
	BasePath string // URL prefix for sub-path deployments (e.g. "/td3")
	Source   string // where records come from: fixture, sqlite or file
}
