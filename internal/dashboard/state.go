package dashboard

import (
	"fmt"
	"net/url"

	"github.com/pavelanni/gradeboard/internal/model"
)

// Query parameter names carrying the view state.
const (
	ParamSearch         = "q"
	ParamExerciseFilter = "ex"
	ParamStudent        = "student"
	ParamExercise       = "exercise"
)

// SetSearchQuery replaces the query. An empty query means no filter.
func SetSearchQuery(state model.ViewState, text string) model.ViewState {
	state.SearchQuery = text
	return state
}

// SetExerciseFilter restricts the rows to one exercise of the catalog. An
// empty id shows every exercise; an id outside the catalog is rejected with
// ErrUnknownExercise and state is returned unchanged.
func SetExerciseFilter(state model.ViewState, r *Records, exerciseID string) (model.ViewState, error) {
	if exerciseID != "" && !r.HasExercise(exerciseID) {
		return state, fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseID)
	}
	state.ExerciseFilter = exerciseID
	return state, nil
}

// Select points the detail panel at (studentID, exerciseID). The pair must
// exist in r; otherwise state is returned unchanged with ErrUnknownPair.
func Select(state model.ViewState, r *Records, studentID, exerciseID string) (model.ViewState, error) {
	sel := model.Selection{StudentID: studentID, ExerciseID: exerciseID}
	if !r.Contains(sel) {
		return state, fmt.Errorf("%w: %s/%s", ErrUnknownPair, studentID, exerciseID)
	}
	state.Selection = &sel
	return state, nil
}

// SelectRow points the detail panel at a projected row, keeping the filters.
func SelectRow(state model.ViewState, row Row) model.ViewState {
	sel := row.Selection()
	state.Selection = &sel
	return state
}

// ClearSelection closes the detail panel.
func ClearSelection(state model.ViewState) model.ViewState {
	state.Selection = nil
	return state
}

// Reconcile drops a selection that no longer names a pair in r and an
// exercise filter outside the catalog.
func Reconcile(state model.ViewState, r *Records) model.ViewState {
	if state.Selection != nil && !r.Contains(*state.Selection) {
		state = ClearSelection(state)
	}
	if state.ExerciseFilter != "" && !r.HasExercise(state.ExerciseFilter) {
		state.ExerciseFilter = ""
	}
	return state
}

// ParseViewState reads the state from URL query values. A selection needs
// both keys; a half-specified one is ignored.
func ParseViewState(v url.Values) model.ViewState {
	state := model.ViewState{
		SearchQuery:    v.Get(ParamSearch),
		ExerciseFilter: v.Get(ParamExerciseFilter),
	}
	studentID, exerciseID := v.Get(ParamStudent), v.Get(ParamExercise)
	if studentID != "" && exerciseID != "" {
		state.Selection = &model.Selection{StudentID: studentID, ExerciseID: exerciseID}
	}
	return state
}

// Values encodes state as URL query values, omitting defaults.
func Values(state model.ViewState) url.Values {
	v := url.Values{}
	if state.SearchQuery != "" {
		v.Set(ParamSearch, state.SearchQuery)
	}
	if state.ExerciseFilter != "" {
		v.Set(ParamExerciseFilter, state.ExerciseFilter)
	}
	if state.Selection != nil {
		v.Set(ParamStudent, state.Selection.StudentID)
		v.Set(ParamExercise, state.Selection.ExerciseID)
	}
	return v
}
