package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pavelanni/gradeboard/internal/dashboard"
	"github.com/pavelanni/gradeboard/internal/handler/views"
	"github.com/pavelanni/gradeboard/internal/model"
)

// Exporter is triggered by the dashboard's Export action.
type Exporter interface {
	Export(r *http.Request, state model.ViewState) error
}

// NoopExporter accepts every export request and does nothing.
type NoopExporter struct{}

// Export logs the request and returns nil.
func (NoopExporter) Export(r *http.Request, state model.ViewState) error {
	slog.Info("export requested; no exporter configured", "search", state.SearchQuery)
	return nil
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	records  *dashboard.Records
	loadErr  error
	exporter Exporter
	config   model.DashboardConfig
}

// New creates a new Handler. A non-nil loadErr makes every dashboard page
// render the unavailable state instead of the records.
func New(records *dashboard.Records, loadErr error, cfg model.DashboardConfig) (*Handler, error) {
	if records == nil && loadErr == nil {
		return nil, errors.New("handler needs records or a load error")
	}
	return &Handler{records: records, loadErr: loadErr, exporter: NoopExporter{}, config: cfg}, nil
}

// WithExporter replaces the Export stub.
func (h *Handler) WithExporter(e Exporter) *Handler {
	h.exporter = e
	return h
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/export", h.handleExport)
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET"},
			MaxAge:         300,
		}))
		api.Get("/view", h.handleAPIView)
	})
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(rel string) string {
	return h.config.BasePath + rel
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if h.loadErr != nil {
		h.renderUnavailable(w, r)
		return
	}

	state := dashboard.ParseViewState(r.URL.Query())
	if state.Selection != nil && !h.records.Contains(*state.Selection) {
		slog.Warn("dropping unknown selection",
			"student", state.Selection.StudentID, "exercise", state.Selection.ExerciseID)
	}
	if state.ExerciseFilter != "" && !h.records.HasExercise(state.ExerciseFilter) {
		slog.Warn("dropping unknown exercise filter", "exercise", state.ExerciseFilter)
	}
	page := dashboard.Project(h.records, state)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.DashboardPage(page).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if h.loadErr != nil {
		h.renderUnavailable(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	state := dashboard.ClearSelection(dashboard.ParseViewState(r.Form))
	state = dashboard.Reconcile(state, h.records)
	if err := h.exporter.Export(r, state); err != nil {
		slog.Error("export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	target := h.path("/")
	if q := dashboard.Values(state).Encode(); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if h.loadErr != nil {
		http.Error(w, "records unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) renderUnavailable(w http.ResponseWriter, r *http.Request) {
	slog.Error("records unavailable", "error", h.loadErr)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := views.UnavailablePage().Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// apiCheck is one check in the JSON view.
type apiCheck struct {
	Name      string              `json:"name"`
	Outcome   model.Outcome       `json:"outcome"`
	Indicator dashboard.Indicator `json:"indicator"`
}

type apiExercise struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Filename            string     `json:"filename"`
	Score               string     `json:"score"`
	Passing             bool       `json:"passing"`
	VerificationsPassed int        `json:"verifications_passed"`
	VerificationsTotal  int        `json:"verifications_total"`
	Checks              []apiCheck `json:"checks"`
}

type apiRow struct {
	StudentID   string      `json:"student_id"`
	StudentName string      `json:"student_name"`
	Exercise    apiExercise `json:"exercise"`
	DetailURL   string      `json:"detail_url"`
}

type apiDetail struct {
	StudentID   string        `json:"student_id"`
	StudentName string        `json:"student_name"`
	Exercise    apiExercise   `json:"exercise"`
	Summary     string        `json:"summary"`
	Details     model.Details `json:"details"`
}

type apiView struct {
	State     model.ViewState          `json:"state"`
	Catalog   []dashboard.CatalogEntry `json:"catalog"`
	Rows      []apiRow                 `json:"rows"`
	TotalRows int                      `json:"total_rows"`
	Counters  dashboard.Counters       `json:"counters"`
	Detail    *apiDetail               `json:"detail,omitempty"`
}

func toAPIExercise(e model.ExerciseResult, checks []dashboard.CheckView) apiExercise {
	out := apiExercise{
		ID:                  e.ID,
		Title:               e.Title,
		Filename:            e.Filename,
		Score:               e.Score.String(),
		Passing:             e.Score.Passing(),
		VerificationsPassed: e.VerificationsPassed,
		VerificationsTotal:  e.VerificationsTotal,
		Checks:              make([]apiCheck, 0, len(checks)),
	}
	for _, cv := range checks {
		out.Checks = append(out.Checks, apiCheck{Name: cv.Name.String(), Outcome: cv.Outcome, Indicator: cv.Indicator})
	}
	return out
}

func (h *Handler) handleAPIView(w http.ResponseWriter, r *http.Request) {
	if h.loadErr != nil {
		http.Error(w, "records unavailable", http.StatusServiceUnavailable)
		return
	}

	page := dashboard.Project(h.records, dashboard.ParseViewState(r.URL.Query()))
	view := apiView{
		State:     page.State,
		Catalog:   page.Catalog,
		Rows:      make([]apiRow, 0, len(page.Rows)),
		TotalRows: page.TotalRows,
		Counters:  page.Counters,
	}
	for _, row := range page.Rows {
		view.Rows = append(view.Rows, apiRow{
			StudentID:   row.StudentID,
			StudentName: row.StudentName,
			Exercise:    toAPIExercise(row.Exercise, row.Checks),
			DetailURL:   h.stateURL(dashboard.SelectRow(page.State, row)),
		})
	}
	if d := page.Detail; d != nil {
		view.Detail = &apiDetail{
			StudentID:   d.StudentID,
			StudentName: d.StudentName,
			Exercise:    toAPIExercise(d.Exercise, d.Checks),
			Summary:     d.Summary,
			Details:     d.Exercise.Details,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		slog.Error("encode error", "error", err)
	}
}

func (h *Handler) stateURL(state model.ViewState) string {
	u := url.URL{Path: h.path("/"), RawQuery: dashboard.Values(state).Encode()}
	return u.String()
}
