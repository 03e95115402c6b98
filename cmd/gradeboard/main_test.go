package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/viper"

	"github.com/pavelanni/gradeboard/internal/dashboard"
	"github.com/pavelanni/gradeboard/internal/fixture"
	"github.com/pavelanni/gradeboard/internal/handler"
	appI18n "github.com/pavelanni/gradeboard/internal/i18n"
	"github.com/pavelanni/gradeboard/internal/model"
	"github.com/pavelanni/gradeboard/internal/store"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init(appI18n.DefaultLang); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const recordsJSON = `{"students": [
  {"id": "7", "name": "Lina", "exercises": [
    {"id": "ex1", "title": "Boucles", "filename": "Boucles.java", "score": 9.5,
     "verifications": "7/7", "checks": {"syntax": true, "method": true}}
  ]}
]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestImportRecords(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()

	path := writeFile(t, "td.json", recordsJSON)

	imported, err := importRecords(db, path, false)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if !imported {
		t.Fatal("expected first import to store records")
	}

	students, err := db.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(students) != 1 || students[0].Name != "Lina" {
		t.Fatalf("unexpected students: %+v", students)
	}
	if got := students[0].Exercises[0].Score; got != 95 {
		t.Errorf("score = %d, want 95", got)
	}

	// Same content is skipped.
	imported, err = importRecords(db, path, false)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if imported {
		t.Error("expected unchanged file to be skipped")
	}

	// Unless forced.
	imported, err = importRecords(db, path, true)
	if err != nil {
		t.Fatalf("forced import: %v", err)
	}
	if !imported {
		t.Error("expected forced import to store records")
	}
}

func TestImportRecordsAlternatingFiles(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()

	a := writeFile(t, "a.yaml", "students:\n  - id: a\n    name: ALICE\n")
	b := writeFile(t, "b.yaml", "students:\n  - id: b\n    name: BOB\n")

	for i, path := range []string{a, b, a} {
		imported, err := importRecords(db, path, false)
		if err != nil {
			t.Fatalf("import %d: %v", i, err)
		}
		if !imported {
			t.Errorf("import %d of %s was skipped", i, filepath.Base(path))
		}
	}

	students, err := db.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(students) != 1 || students[0].Name != "ALICE" {
		t.Fatalf("expected ALICE after re-importing a.yaml, got %+v", students)
	}

	// Re-importing the current snapshot is still skipped.
	imported, err := importRecords(db, a, false)
	if err != nil {
		t.Fatalf("repeat import: %v", err)
	}
	if imported {
		t.Error("expected the current snapshot to be skipped")
	}
}

func TestAcquireImportLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradeboard.db.lock")

	held := flock.New(path)
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: %v %v", locked, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := acquireImportLock(ctx, path); !errors.Is(err, errImportLocked) {
		t.Fatalf("expected errImportLocked while held, got %v", err)
	}

	if err := held.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	lock, err := acquireImportLock(context.Background(), path)
	if err != nil {
		t.Fatalf("acquire after unlock: %v", err)
	}
	lock.Unlock()

	missing := filepath.Join(t.TempDir(), "missing", "gradeboard.db.lock")
	_, err = acquireImportLock(context.Background(), missing)
	if err == nil {
		t.Fatal("expected error for a lock in a missing directory")
	}
	if errors.Is(err, errImportLocked) {
		t.Errorf("open failure reported as contention: %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected the open error to be wrapped, got %v", err)
	}
}

func TestImportRecordsRejectsInvalid(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad yaml", "bad.yaml", "students: [\n"},
		{"duplicate student", "dup.yaml", "students:\n  - id: a\n    name: A\n  - id: a\n    name: B\n"},
		{"too many verifications", "ratio.yaml",
			"students:\n  - id: a\n    name: A\n    exercises:\n      - id: e\n        score: 5\n        verifications: 8/7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			if _, err := importRecords(db, path, false); err == nil {
				t.Fatal("expected error")
			}
			hash, _ := db.GetSnapshotHash()
			if hash != "" {
				t.Errorf("failed import recorded hash %q", hash)
			}
		})
	}
}

func TestOpenLoader(t *testing.T) {
	path := writeFile(t, "td.json", recordsJSON)

	tests := []struct {
		name     string
		settings map[string]any
		students int
		wantErr  bool
	}{
		{"default is fixture", map[string]any{}, 2, false},
		{"fixture", map[string]any{"source": "fixture"}, 2, false},
		{"file", map[string]any{"source": "file", "records": path}, 1, false},
		{"file without path", map[string]any{"source": "file"}, 0, true},
		{"sqlite", map[string]any{"source": "sqlite", "db": ":memory:"}, 0, false},
		{"unknown", map[string]any{"source": "ftp"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.settings {
				v.Set(k, val)
			}
			loader, cleanup, err := openLoader(v)
			defer cleanup()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("openLoader: %v", err)
			}
			records, err := dashboard.Load(context.Background(), loader)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if records.Len() != tt.students {
				t.Errorf("students = %d, want %d", records.Len(), tt.students)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"/":      "",
		"td3":    "/td3",
		"/td3/":  "/td3",
		" /a/b ": "/a/b",
	}
	for in, want := range tests {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteTable(t *testing.T) {
	students, err := fixture.Default()
	if err != nil {
		t.Fatalf("fixture.Default: %v", err)
	}
	records, err := dashboard.NewRecords(students)
	if err != nil {
		t.Fatalf("NewRecords: %v", err)
	}

	var buf bytes.Buffer
	page := dashboard.Project(records, model.ViewState{SearchQuery: "sam"})
	if err := writeTable(context.Background(), &buf, page, false); err != nil {
		t.Fatalf("writeTable: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "\x1b[") {
		t.Error("expected no escape codes without color")
	}
	if strings.Contains(out, "GOGO") {
		t.Error("filtered student GOGO should not be listed")
	}
	if strings.Count(out, "SAM") != 1 {
		t.Errorf("student name should appear once per group:\n%s", out)
	}
	for _, want := range []string{"++xx+! 4/7 5.7/10", "++xx++ 5/7 7.1/10", "2 résultats affichés"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableExerciseFlag(t *testing.T) {
	var buf bytes.Buffer
	cmd := tableCmd()
	cmd.SetArgs([]string{"--exercise", "10-comptage-mots", "--search", "o", "--no-color"})
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("table: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "Fonction Racine") {
		t.Errorf("other exercise should be filtered out:\n%s", out)
	}
	for _, want := range []string{"6/7 8.6/10", "5/7 7.1/10", "2 résultats affichés"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	cmd = tableCmd()
	cmd.SetArgs([]string{"--exercise", "99-missing"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); !errors.Is(err, dashboard.ErrUnknownExercise) {
		t.Errorf("expected ErrUnknownExercise, got %v", err)
	}
}

func TestRouterBasePathRedirect(t *testing.T) {
	students, _ := fixture.Default()
	records, err := dashboard.NewRecords(students)
	if err != nil {
		t.Fatalf("NewRecords: %v", err)
	}
	h, err := handler.New(records, nil, model.DashboardConfig{BasePath: "/td3"})
	if err != nil {
		t.Fatalf("handler.New: %v", err)
	}
	r := newRouter(h, "/td3")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/td3", nil))
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/td3/" {
		t.Errorf("Location = %q, want /td3/", loc)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/td3/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}
