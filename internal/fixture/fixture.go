// Package fixture decodes records files (YAML or JSON) into students and
// ships the built-in sample grading run.
package fixture

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/gradeboard/internal/model"
)

//go:embed default.yaml
var defaultRecords []byte

// Format is the encoding of a records file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension; YAML is the default.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// File is the top-level layout of a records file.
type File struct {
	Students []StudentImport `json:"students" yaml:"students"`
}

// StudentImport is a student as written in a records file.
type StudentImport struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	Exercises []ExerciseImport `json:"exercises" yaml:"exercises"`
}

// ExerciseImport is an exercise result as written in a records file.
// Score may be a number ("8.6") or a ratio ("8.6/10"); Verifications is "6/7".
// Check values may be booleans or "pass"/"fail"/"warning".
type ExerciseImport struct {
	ID            string         `json:"id" yaml:"id"`
	Title         string         `json:"title" yaml:"title"`
	Filename      string         `json:"filename" yaml:"filename"`
	Score         any            `json:"score" yaml:"score"`
	Verifications string         `json:"verifications" yaml:"verifications"`
	Checks        map[string]any `json:"checks" yaml:"checks"`
	Details       model.Details  `json:"details" yaml:"details"`
}

// Default returns the built-in sample grading run.
func Default() ([]model.Student, error) {
	return Decode(bytes.NewReader(defaultRecords), FormatYAML)
}

// Decode reads a records file.
func Decode(r io.Reader, format Format) ([]model.Student, error) {
	var f File
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("parse JSON records: %w", err)
		}
	default:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
			return nil, fmt.Errorf("parse YAML records: %w", err)
		}
	}
	return toModel(f.Students)
}

func toModel(ss []StudentImport) ([]model.Student, error) {
	out := make([]model.Student, 0, len(ss))
	for _, si := range ss {
		st := model.Student{ID: si.ID, Name: si.Name}
		for _, ei := range si.Exercises {
			ex, err := ei.toModel()
			if err != nil {
				return nil, fmt.Errorf("student %s: %w", si.ID, err)
			}
			st.Exercises = append(st.Exercises, ex)
		}
		out = append(out, st)
	}
	return out, nil
}

func (ei ExerciseImport) toModel() (model.ExerciseResult, error) {
	ex := model.ExerciseResult{
		ID:       ei.ID,
		Title:    ei.Title,
		Filename: ei.Filename,
		Details:  ei.Details,
	}

	score, err := parseScoreValue(ei.Score)
	if err != nil {
		return ex, fmt.Errorf("exercise %s: %w", ei.ID, err)
	}
	ex.Score = score

	if ei.Verifications != "" {
		passed, total, err := parseRatio(ei.Verifications)
		if err != nil {
			return ex, fmt.Errorf("exercise %s: verifications: %w", ei.ID, err)
		}
		ex.VerificationsPassed, ex.VerificationsTotal = passed, total
	}

	outcomes := make(map[string]model.Outcome, len(ei.Checks))
	for k, v := range ei.Checks {
		outcomes[k] = outcomeValue(v)
	}
	ex.Checks = model.ChecksFromMap(outcomes)
	return ex, nil
}

func parseScoreValue(v any) (model.Score, error) {
	switch s := v.(type) {
	case nil:
		return 0, nil
	case int:
		return model.ParseScore(strconv.Itoa(s))
	case float64:
		return model.ParseScore(strconv.FormatFloat(s, 'f', -1, 64))
	case string:
		return model.ParseScore(s)
	default:
		return 0, fmt.Errorf("%w: unsupported value %v", model.ErrInvalidScore, v)
	}
}

func parseRatio(s string) (int, int, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not n/m", model.ErrInvalidRecord, s)
	}
	passed, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", model.ErrInvalidRecord, s)
	}
	total, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", model.ErrInvalidRecord, s)
	}
	return passed, total, nil
}

func outcomeValue(v any) model.Outcome {
	switch o := v.(type) {
	case bool:
		return model.OutcomeFromBool(o)
	case string:
		return model.ParseOutcome(o)
	default:
		return model.OutcomeUnknown
	}
}

// DefaultLoader serves the built-in sample grading run.
type DefaultLoader struct{}

// LoadRecords returns the embedded records.
func (DefaultLoader) LoadRecords(_ context.Context) ([]model.Student, error) {
	return Default()
}

// FileLoader reads records from a file on every call.
type FileLoader struct {
	Path string
}

// LoadRecords opens and decodes the records file.
func (l FileLoader) LoadRecords(ctx context.Context) ([]model.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(l.Path))
}
