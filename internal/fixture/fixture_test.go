package fixture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/gradeboard/internal/model"
)

func TestDefault(t *testing.T) {
	students, err := Default()
	require.NoError(t, err)
	require.Len(t, students, 2)

	assert.Equal(t, "GOGO", students[0].Name)
	assert.Equal(t, "SAM", students[1].Name)
	require.Len(t, students[0].Exercises, 2)

	racine := students[0].Exercises[0]
	assert.Equal(t, "09-fonction-racine-carree", racine.ID)
	assert.Equal(t, "Fonction Racine Carrée", racine.Title)
	assert.Equal(t, model.Score(100), racine.Score)
	assert.Equal(t, 7, racine.VerificationsPassed)
	assert.Equal(t, 7, racine.VerificationsTotal)
	assert.Equal(t, "double calculerRacineCarree(double)", racine.Details.MethodSignatureFound)

	mots := students[0].Exercises[1]
	assert.Equal(t, model.Score(86), mots.Score)
	assert.Equal(t, model.OutcomeFail, mots.Checks.Get(model.CheckOperators))
	assert.Equal(t, 5, mots.Checks.CountOutcome(model.OutcomePass))
	assert.Equal(t, []string{"Utilisation d'opérateurs non autorisés"}, mots.Details.Problems)

	for _, s := range students {
		require.NoError(t, s.Validate())
	}
}

func TestDecodeJSON(t *testing.T) {
	const doc = `{
	  "students": [
	    {"id": "7", "name": "Ada", "exercises": [
	      {"id": "ex1", "title": "Boucles", "filename": "Boucles.java",
	       "score": 6.5, "verifications": "3/7",
	       "checks": {"syntax": "pass", "naming": "warning", "operators": false, "bogus": true}}
	    ]}
	  ]
	}`
	students, err := Decode(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, students, 1)

	ex := students[0].Exercises[0]
	assert.Equal(t, model.Score(65), ex.Score)
	assert.Equal(t, model.OutcomePass, ex.Checks.Get(model.CheckSyntax))
	assert.Equal(t, model.OutcomeWarning, ex.Checks.Get(model.CheckNaming))
	assert.Equal(t, model.OutcomeFail, ex.Checks.Get(model.CheckOperators))
	// Missing keys degrade to unknown rather than failing the record.
	assert.Equal(t, model.OutcomeUnknown, ex.Checks.Get(model.CheckPatterns))
	assert.Equal(t, model.OutcomeUnknown, ex.Checks.Get(model.CheckMethod))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"bad score", "students:\n  - id: a\n    exercises:\n      - id: e\n        score: lots\n", model.ErrInvalidScore},
		{"score over ten", "students:\n  - id: a\n    exercises:\n      - id: e\n        score: 12/10\n", model.ErrInvalidScore},
		{"bad verifications", "students:\n  - id: a\n    exercises:\n      - id: e\n        verifications: seven\n", model.ErrInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), FormatYAML)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	students, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "td3.yaml")
	require.NoError(t, os.WriteFile(path, defaultRecords, 0o644))

	students, err := FileLoader{Path: path}.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 2)

	_, err = FileLoader{Path: filepath.Join(dir, "missing.yaml")}.LoadRecords(context.Background())
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("runs/td3.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("runs/td3.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("runs/td3"))
}
