package dashboard

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pavelanni/gradeboard/internal/model"
)

// Indicator is the visual marker for one check outcome.
type Indicator string

const (
	IndicatorPositive Indicator = "positive"
	IndicatorNegative Indicator = "negative"
	IndicatorWarning  Indicator = "warning"
	IndicatorUnknown  Indicator = "unknown"
)

// RowIndicator renders an outcome in the table. A failed "patterns" check is
// advisory and shows as a warning rather than a failure.
func RowIndicator(c model.CheckName, o model.Outcome) Indicator {
	switch o {
	case model.OutcomePass:
		return IndicatorPositive
	case model.OutcomeWarning:
		return IndicatorWarning
	case model.OutcomeFail:
		if c == model.CheckPatterns {
			return IndicatorWarning
		}
		return IndicatorNegative
	default:
		return IndicatorUnknown
	}
}

// DetailIndicator renders an outcome in the detail panel: pass or not pass.
func DetailIndicator(o model.Outcome) Indicator {
	switch o {
	case model.OutcomePass:
		return IndicatorPositive
	case model.OutcomeFail, model.OutcomeWarning:
		return IndicatorNegative
	default:
		return IndicatorUnknown
	}
}

// CheckView is one rendered check.
type CheckView struct {
	Name      model.CheckName
	Outcome   model.Outcome
	Indicator Indicator
}

// Row is one (student, exercise) line of the table.
type Row struct {
	StudentID   string
	StudentName string
	Exercise    model.ExerciseResult
	Checks      []CheckView
	Passing     bool
	// GroupStart marks the first visible row of a student; GroupSize is the
	// number of visible rows in that student's group (0 on other rows).
	GroupStart bool
	GroupSize  int
}

// Selection returns the key that selects this row.
func (r Row) Selection() model.Selection {
	return model.Selection{StudentID: r.StudentID, ExerciseID: r.Exercise.ID}
}

// Counters are the dashboard aggregates, always computed over all records.
type Counters struct {
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Failed     int `json:"failed"`
	Untried    int `json:"untried"`
}

// Get returns the counter for a category.
func (c Counters) Get(cat model.Category) int {
	switch cat {
	case model.CategoryCompleted:
		return c.Completed
	case model.CategoryInProgress:
		return c.InProgress
	case model.CategoryFailed:
		return c.Failed
	case model.CategoryUntried:
		return c.Untried
	}
	return 0
}

// Categories lists the counter categories in display order.
var Categories = []model.Category{
	model.CategoryCompleted,
	model.CategoryInProgress,
	model.CategoryFailed,
	model.CategoryUntried,
}

// DetailPanel is the drill-down for the selected pair.
type DetailPanel struct {
	StudentID   string
	StudentName string
	Exercise    model.ExerciseResult
	Checks      []CheckView
	Summary     string
	Passing     bool
}

// Page is everything the dashboard renders for one view state.
type Page struct {
	State     model.ViewState
	Catalog   []CatalogEntry
	Rows      []Row
	TotalRows int
	Counters  Counters
	Detail    *DetailPanel
}

// Classify assigns an attempted exercise to a counter category.
func Classify(e model.ExerciseResult) model.Category {
	switch {
	case e.VerificationsPassed == 0:
		return model.CategoryFailed
	case e.Score.Passing():
		return model.CategoryCompleted
	default:
		return model.CategoryInProgress
	}
}

// FilterRows flattens the records into rows and keeps those whose student
// name or exercise title contains query, ignoring case, and whose exercise
// is exerciseID when one is given. Order is store order.
func FilterRows(r *Records, query, exerciseID string) []Row {
	// A Caser is stateful; each call gets its own.
	fold := cases.Fold()
	needle := fold.String(query)
	var rows []Row
	for _, s := range r.students {
		name := fold.String(s.Name)
		groupAt := -1
		for _, e := range s.Exercises {
			if exerciseID != "" && e.ID != exerciseID {
				continue
			}
			if needle != "" && !strings.Contains(name, needle) && !strings.Contains(fold.String(e.Title), needle) {
				continue
			}
			row := Row{
				StudentID:   s.ID,
				StudentName: s.Name,
				Exercise:    e.Clone(),
				Checks:      rowChecks(e.Checks),
				Passing:     e.Score.Passing(),
			}
			if groupAt < 0 {
				groupAt = len(rows)
				row.GroupStart = true
			}
			rows = append(rows, row)
			rows[groupAt].GroupSize++
		}
	}
	return rows
}

func rowChecks(cs model.Checks) []CheckView {
	out := make([]CheckView, 0, len(model.CheckNames))
	for _, c := range model.CheckNames {
		o := cs.Get(c)
		out = append(out, CheckView{Name: c, Outcome: o, Indicator: RowIndicator(c, o)})
	}
	return out
}

func detailChecks(cs model.Checks) []CheckView {
	out := make([]CheckView, 0, len(model.CheckNames))
	for _, c := range model.CheckNames {
		o := cs.Get(c)
		out = append(out, CheckView{Name: c, Outcome: o, Indicator: DetailIndicator(o)})
	}
	return out
}

// Count computes the counters over every record, ignoring any filter.
// Untried counts catalog exercises a student has no result for.
func Count(r *Records) Counters {
	var c Counters
	for _, s := range r.students {
		for _, e := range s.Exercises {
			switch Classify(e) {
			case model.CategoryCompleted:
				c.Completed++
			case model.CategoryInProgress:
				c.InProgress++
			case model.CategoryFailed:
				c.Failed++
			}
		}
		c.Untried += len(r.catalog) - len(s.Exercises)
	}
	return c
}

// Detail builds the panel for the current selection, or nil when nothing
// (or a pair that no longer exists) is selected.
func Detail(r *Records, state model.ViewState) *DetailPanel {
	if state.Selection == nil {
		return nil
	}
	s, e, ok := r.Lookup(*state.Selection)
	if !ok {
		return nil
	}
	return &DetailPanel{
		StudentID:   s.ID,
		StudentName: s.Name,
		Exercise:    e,
		Checks:      detailChecks(e.Checks),
		Summary:     Ratio(e),
		Passing:     e.Score.Passing(),
	}
}

// Ratio formats the verifications of e as "passed/total".
func Ratio(e model.ExerciseResult) string {
	return fmt.Sprintf("%d/%d", e.VerificationsPassed, e.VerificationsTotal)
}

// Project derives the full render model from the records and the state.
func Project(r *Records, state model.ViewState) Page {
	state = Reconcile(state, r)
	return Page{
		State:     state,
		Catalog:   r.Catalog(),
		Rows:      FilterRows(r, state.SearchQuery, state.ExerciseFilter),
		TotalRows: r.ResultCount(),
		Counters:  Count(r),
		Detail:    Detail(r, state),
	}
}
