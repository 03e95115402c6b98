package views

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/gradeboard/internal/dashboard"
	appI18n "github.com/pavelanni/gradeboard/internal/i18n"
	"github.com/pavelanni/gradeboard/internal/model"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init(appI18n.DefaultLang); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func render(t *testing.T, pg dashboard.Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, DashboardPage(pg).Render(context.Background(), &buf))
	return buf.String()
}

func singleRecordPage(t *testing.T, e model.ExerciseResult, state model.ViewState) dashboard.Page {
	t.Helper()
	r, err := dashboard.NewRecords([]model.Student{{ID: "s1", Name: `Ada <Lovelace>`, Exercises: []model.ExerciseResult{e}}})
	require.NoError(t, err)
	return dashboard.Project(r, state)
}

func TestDashboardEscapesText(t *testing.T) {
	e := model.ExerciseResult{ID: "e1", Title: `"Quotes" & <tags>`, Score: 80, VerificationsPassed: 7, VerificationsTotal: 7}
	out := render(t, singleRecordPage(t, e, model.ViewState{SearchQuery: "ada"}))

	assert.Contains(t, out, "Ada &lt;Lovelace&gt;")
	assert.Contains(t, out, "&#34;Quotes&#34; &amp; &lt;tags&gt;")
	assert.NotContains(t, out, "<Lovelace>")

	out = render(t, singleRecordPage(t, e, model.ViewState{SearchQuery: `"><b>`}))
	assert.Contains(t, out, `value="&#34;&gt;&lt;b&gt;"`)
	assert.NotContains(t, out, "<b>")
}

func TestDashboardIndicators(t *testing.T) {
	checks := model.Checks{}.
		With(model.CheckSyntax, model.OutcomePass).
		With(model.CheckNaming, model.OutcomeFail).
		With(model.CheckPatterns, model.OutcomeFail)
	e := model.ExerciseResult{ID: "e1", Title: "One", Score: 40, VerificationsPassed: 1, VerificationsTotal: 7, Checks: checks}
	out := render(t, singleRecordPage(t, e, model.ViewState{}))

	assert.Contains(t, out, `data-check="syntax" data-indicator="positive"`)
	assert.Contains(t, out, `data-check="naming" data-indicator="negative"`)
	assert.Contains(t, out, `data-check="patterns" data-indicator="warning"`)
	assert.Contains(t, out, `data-check="method" data-indicator="unknown"`)
	assert.Equal(t, 6, strings.Count(out, "data-check="))
	assert.Contains(t, out, `<td class="fail">1/7 vérifications - 4.0/10 pt</td>`)
}

func TestDetailProblemsMarkdown(t *testing.T) {
	e := model.ExerciseResult{
		ID: "e1", Title: "One", Score: 90, VerificationsPassed: 7, VerificationsTotal: 7,
		Details: model.Details{Problems: []string{
			"Utiliser `Math.sqrt`",
			"Points:\n\n- boucle\n- *variable* inutile",
			"<script>alert(1)</script>",
		}},
	}
	out := render(t, singleRecordPage(t, e, model.ViewState{Selection: &model.Selection{StudentID: "s1", ExerciseID: "e1"}}))

	assert.Contains(t, out, `<ul class="problems"><li><p>Utiliser <code>Math.sqrt</code></p></li>`)
	assert.Contains(t, out, "<li><p>Points:</p>\n<ul>\n<li>boucle</li>\n<li><em>variable</em> inutile</li>\n</ul></li>")
	assert.NotContains(t, out, "<script>")
	assert.Equal(t, strings.Count(out, "<ul"), strings.Count(out, "</ul>"))
	assert.Contains(t, out, `<dd class="pass">`)
}

func TestMarkdownHTML(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"inline", "Utiliser `x`", "<p>Utiliser <code>x</code></p>"},
		{"paragraphs", "un\n\ndeux", "<p>un</p>\n<p>deux</p>"},
		{"list", "- a\n- b", "<ul>\n<li>a</li>\n<li>b</li>\n</ul>"},
		{"raw html", "<b>x</b>", "<p><!-- raw HTML omitted -->x<!-- raw HTML omitted --></p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, markdownHTML(tt.src))
		})
	}
}

func TestToolbarExerciseFilter(t *testing.T) {
	r, err := dashboard.NewRecords([]model.Student{{ID: "s1", Name: "Ada", Exercises: []model.ExerciseResult{
		{ID: "e1", Title: "Premier", Score: 80, VerificationsPassed: 7, VerificationsTotal: 7},
		{ID: "e2", Title: "Second", Score: 20, VerificationsPassed: 1, VerificationsTotal: 7},
	}}})
	require.NoError(t, err)

	out := render(t, dashboard.Project(r, model.ViewState{}))
	assert.Contains(t, out, `<select name="ex" aria-label="Filtrer par exercice"><option value="">Tous les exercices</option> <option value="e1">Premier</option><option value="e2">Second</option></select>`)
	assert.NotContains(t, out, `class="clear"`)

	state, err := dashboard.SetExerciseFilter(model.ViewState{}, r, "e2")
	require.NoError(t, err)
	out = render(t, dashboard.Project(r, state))
	assert.Contains(t, out, `<option value="e2" selected>Second</option>`)
	assert.Contains(t, out, `<input type="hidden" name="ex" value="e2">`)
	assert.Contains(t, out, `<a class="clear" href="/">`)
	assert.Contains(t, out, `href="/?ex=e2&amp;exercise=e2&amp;student=s1"`)
	assert.Equal(t, 1, strings.Count(out, `class="details"`))
}

func TestCountersMarkup(t *testing.T) {
	e := model.ExerciseResult{ID: "e1", Title: "One", Score: 80, VerificationsPassed: 7, VerificationsTotal: 7}
	out := render(t, singleRecordPage(t, e, model.ViewState{}))
	assert.Contains(t, out, `<div class="counter" data-category="completed"><div class="label">Exercices complétés</div><div class="value">1</div></div>`)
	assert.Contains(t, out, `<td rowspan="1" class="student">Ada &lt;Lovelace&gt;</td>`)
	assert.True(t, strings.HasPrefix(out, "<!doctype html><html lang=\"fr\">"))
}

func TestUnavailablePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, UnavailablePage().Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `role="alert"`)
	assert.Contains(t, buf.String(), "Données indisponibles")
}
