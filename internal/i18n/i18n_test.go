package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initCatalog(t *testing.T) context.Context {
	t.Helper()
	if err := Init(DefaultLang); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(DefaultLang))
}

func TestTranslate(t *testing.T) {
	ctx := initCatalog(t)

	got := T(ctx, "AppTitle")
	if got != "Tableau de bord d'évaluation" {
		t.Errorf("T(AppTitle) = %q", got)
	}

	got = T(ctx, "CounterUntried")
	if got != "Sans tentative" {
		t.Errorf("T(CounterUntried) = %q, want 'Sans tentative'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initCatalog(t)

	got1 := Tp(ctx, "RowsShown", 1)
	if got1 != "1 résultat affiché" {
		t.Errorf("Tp(RowsShown, 1) = %q, want '1 résultat affiché'", got1)
	}

	got4 := Tp(ctx, "RowsShown", 4)
	if got4 != "4 résultats affichés" {
		t.Errorf("Tp(RowsShown, 4) = %q, want '4 résultats affichés'", got4)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initCatalog(t)

	got := Td(ctx, "RowResult", map[string]any{"Verifications": "6/7", "Score": "8.6/10"})
	if got != "6/7 vérifications - 8.6/10 pt" {
		t.Errorf("Td(RowResult) = %q", got)
	}
}

func TestFallbackLocalizer(t *testing.T) {
	initCatalog(t)

	got := T(context.Background(), "Close")
	if got != "Fermer" {
		t.Errorf("T(Close) without localizer = %q, want 'Fermer'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initCatalog(t)

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestInitRejectsUnknownLanguage(t *testing.T) {
	if err := Init("not a tag!"); err == nil {
		t.Error("expected parse error")
	}
	if err := Init("de"); err == nil {
		t.Error("expected error for a language without a catalog")
	}
	if err := Init("fr-FR"); err != nil {
		t.Errorf("Init(fr-FR): %v", err)
	}
	if got := Lang(); got != "fr-FR" {
		t.Errorf("Lang() = %q, want fr-FR", got)
	}
}

func TestMiddlewareInjectsLocalizer(t *testing.T) {
	initCatalog(t)

	var got string
	h := Middleware(DefaultLang)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "Close")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "Fermer" {
		t.Errorf("T(Close) in request = %q, want 'Fermer'", got)
	}
}
