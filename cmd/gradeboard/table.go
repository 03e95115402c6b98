package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pavelanni/gradeboard/internal/dashboard"
	appI18n "github.com/pavelanni/gradeboard/internal/i18n"
	"github.com/pavelanni/gradeboard/internal/model"
)

func tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the results table and counters to the terminal",
		RunE:  runTable,
	}
	f := cmd.Flags()
	f.StringP("search", "s", "", "Only show rows whose student name or exercise title contains this text")
	f.StringP("exercise", "e", "", "Only show rows for this exercise ID")
	f.Bool("no-color", false, "Disable colored output")
	addSourceFlags(cmd)
	addLangFlag(cmd)
	addLogFlags(cmd)
	return cmd
}

func runTable(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	loader, closeLoader, err := openLoader(v)
	if err != nil {
		return err
	}
	defer closeLoader()

	records, err := dashboard.Load(cmd.Context(), loader)
	if err != nil {
		return err
	}

	state := dashboard.SetSearchQuery(model.ViewState{}, v.GetString("search"))
	state, err = dashboard.SetExerciseFilter(state, records, v.GetString("exercise"))
	if err != nil {
		return err
	}

	colored := !v.GetBool("no-color") && isatty.IsTerminal(os.Stdout.Fd())
	page := dashboard.Project(records, state)
	return writeTable(cmd.Context(), cmd.OutOrStdout(), page, colored)
}

type palette struct {
	bold, green, red, yellow, gray *color.Color
}

func newPalette(colored bool) palette {
	p := palette{
		bold:   color.New(color.Bold),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		gray:   color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.bold, p.green, p.red, p.yellow, p.gray} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) indicator(ind dashboard.Indicator) *color.Color {
	switch ind {
	case dashboard.IndicatorPositive:
		return p.green
	case dashboard.IndicatorNegative:
		return p.red
	case dashboard.IndicatorWarning:
		return p.yellow
	default:
		return p.gray
	}
}

var indicatorMarks = map[dashboard.Indicator]string{
	dashboard.IndicatorPositive: "+",
	dashboard.IndicatorNegative: "x",
	dashboard.IndicatorWarning:  "!",
	dashboard.IndicatorUnknown:  "?",
}

// writeTable prints the counters and the visible rows, one line per row.
func writeTable(ctx context.Context, w io.Writer, page dashboard.Page, colored bool) error {
	p := newPalette(colored)

	p.bold.Fprintln(w, appI18n.T(ctx, "AppTitle"))
	for _, cat := range dashboard.Categories {
		fmt.Fprintf(w, "  %-24s %d\n", appI18n.T(ctx, counterLabel(cat)), page.Counters.Get(cat))
	}
	fmt.Fprintln(w)

	if len(page.Rows) == 0 {
		fmt.Fprintln(w, appI18n.T(ctx, "NoRows"))
		return nil
	}

	for _, row := range page.Rows {
		name := ""
		if row.GroupStart {
			name = row.StudentName
		}
		fmt.Fprintf(w, "%-12s %-28s ", name, row.Exercise.Title)
		for _, cv := range row.Checks {
			p.indicator(cv.Indicator).Fprint(w, indicatorMarks[cv.Indicator])
		}
		result := fmt.Sprintf(" %d/%d %s", row.Exercise.VerificationsPassed,
			row.Exercise.VerificationsTotal, row.Exercise.Score)
		if row.Passing {
			p.green.Fprintln(w, result)
		} else {
			p.red.Fprintln(w, result)
		}
	}
	_, err := fmt.Fprintf(w, "\n%s\n", appI18n.Tp(ctx, "RowsShown", len(page.Rows)))
	return err
}

func counterLabel(cat model.Category) string {
	switch cat {
	case model.CategoryCompleted:
		return "CounterCompleted"
	case model.CategoryInProgress:
		return "CounterInProgress"
	case model.CategoryFailed:
		return "CounterFailed"
	default:
		return "CounterUntried"
	}
}
