// Package views renders the dashboard HTML as templ components.
package views

import (
	"bytes"
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"

	"github.com/pavelanni/gradeboard/internal/dashboard"
	appI18n "github.com/pavelanni/gradeboard/internal/i18n"
	"github.com/pavelanni/gradeboard/internal/model"
)

var markdown = goldmark.New()

var columns = []string{"ColStudent", "ColExercise", "ColStatus", "ColResult", "ColActions"}

var counterLabels = map[model.Category]string{
	model.CategoryCompleted:  "CounterCompleted",
	model.CategoryInProgress: "CounterInProgress",
	model.CategoryFailed:     "CounterFailed",
	model.CategoryUntried:    "CounterUntried",
}

var indicatorGlyph = map[dashboard.Indicator]string{
	dashboard.IndicatorPositive: "✓",
	dashboard.IndicatorNegative: "✗",
	dashboard.IndicatorWarning:  "⚠",
	dashboard.IndicatorUnknown:  "?",
}

// pathURL prefixes rel with the deployment base path.
func pathURL(ctx context.Context, rel string) string {
	return model.BasePathFromContext(ctx) + rel
}

// stateURL links to the dashboard in the given state.
func stateURL(ctx context.Context, state model.ViewState) string {
	u := pathURL(ctx, "/")
	if q := dashboard.Values(state).Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func rowResult(ctx context.Context, e model.ExerciseResult) string {
	return appI18n.Td(ctx, "RowResult", map[string]any{
		"Verifications": dashboard.Ratio(e),
		"Score":         e.Score.String(),
	})
}

// markdownHTML renders a finding as a block-level Markdown fragment.
// Raw HTML in the source is dropped by goldmark's default renderer.
func markdownHTML(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return templ.EscapeString(src)
	}
	return strings.TrimSpace(buf.String())
}
