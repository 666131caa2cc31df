package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/stroop/internal/model"
)

// RecentShown is how many recent tests the stats screen lists.
const RecentShown = 5

// RenderProfile prints the lifetime totals of one user.
func RenderProfile(w io.Writer, user string, p model.UserProfile) error {
	if p.TotalTests == 0 {
		_, err := fmt.Fprintf(w, "No tests recorded for %s.\n\n", user)
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Statistics for %s\n", user)
	fmt.Fprintf(&b, "Total tests:       %d\n", p.TotalTests)
	fmt.Fprintf(&b, "Total trials:      %d\n", p.TotalTrials)
	fmt.Fprintf(&b, "Average accuracy:  %.1f%%\n", p.AvgAccuracy)
	fmt.Fprintf(&b, "Average response:  %.2fs\n", p.AvgResponseTime)
	fmt.Fprintf(&b, "Best accuracy:     %.1f%%\n\n", p.BestAccuracy)
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderRecent prints the last RecentShown summaries, oldest first.
func RenderRecent(w io.Writer, recent []model.SessionSummary) error {
	if len(recent) == 0 {
		return nil
	}
	if len(recent) > RecentShown {
		recent = recent[len(recent)-RecentShown:]
	}
	var b strings.Builder
	b.WriteString("Recent tests\n")
	for _, s := range recent {
		fmt.Fprintf(&b, "%s: %s - %.1f%% (%s)\n",
			s.Date.Local().Format("2006-01-02 15:04"), s.TestType.Title(), s.Accuracy, s.Difficulty)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderColorTable prints per-color accuracy, weakest first.
func RenderColorTable(w io.Writer, colors []ColorStat) error {
	if len(colors) == 0 {
		_, err := fmt.Fprintln(w, "No color stats found.")
		return err
	}
	tbl := newTextTable("Color", "Accuracy", "Mean RT (s)", "Trials", "Timeouts").alignRight(1, 2, 3, 4)
	for _, c := range colors {
		tbl.add(c.Color,
			fmt.Sprintf("%.1f%%", c.Accuracy()),
			fmt.Sprintf("%.2f", c.MeanRT()),
			fmt.Sprintf("%d", c.Trials),
			fmt.Sprintf("%d", c.Timeouts))
	}
	return writeSection(w, "Per-Color", tbl.lines())
}

// RenderTypeTable prints per-test-type accuracy and response time.
func RenderTypeTable(w io.Writer, types []TypeStat) error {
	if len(types) == 0 {
		return nil
	}
	tbl := newTextTable("Test", "Sessions", "Accuracy", "Mean RT (s)").alignRight(1, 2, 3)
	for _, t := range types {
		tbl.add(t.TestType.String(),
			fmt.Sprintf("%d", t.Sessions),
			fmt.Sprintf("%.1f%%", t.Accuracy()),
			fmt.Sprintf("%.2f", t.MeanRT()))
	}
	return writeSection(w, "Per-Test", tbl.lines())
}

// RenderInterference prints the Stroop effect and response-time spread.
func RenderInterference(w io.Writer, i Interference, stdDev float64) error {
	var b strings.Builder
	b.WriteString("Interference\n")
	if effect, ok := i.Effect(); ok {
		fmt.Fprintf(&b, "Congruent:    %.2fs (%d trials)\n", i.CongruentRT, i.CongruentTrials)
		fmt.Fprintf(&b, "Incongruent:  %.2fs (%d trials)\n", i.IncongruentRT, i.IncongruentTrials)
		fmt.Fprintf(&b, "Stroop effect: %+.0fms\n", effect*1000)
	} else {
		b.WriteString("Not enough congruent and incongruent trials yet.\n")
	}
	fmt.Fprintf(&b, "RT std dev:   %.2fs\n\n", stdDev)
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderCurves plots smoothed accuracy and mean response time per session.
func RenderCurves(w io.Writer, sessions []model.SessionRecord, window int, opts PlotOptions) error {
	curves := SessionCurves(sessions).Smooth(window)
	if len(curves.Accuracy) == 0 {
		return nil
	}
	return PlotSeries(w, "Learning Curves", []Series{
		{Name: "Accuracy %", Values: curves.Accuracy},
		{Name: "Avg time s", Values: curves.AvgTime},
	}, opts)
}

// RenderReport prints every section of a report as plain text.
func RenderReport(w io.Writer, r Report, window int) error {
	if err := RenderProfile(w, r.User, r.Profile); err != nil {
		return err
	}
	if r.Profile.TotalTests == 0 {
		return nil
	}
	if err := RenderRecent(w, r.Profile.RecentTests); err != nil {
		return err
	}
	if err := RenderTypeTable(w, r.Types); err != nil {
		return err
	}
	if err := RenderInterference(w, r.Interference, r.RTStdDev); err != nil {
		return err
	}
	if err := RenderColorTable(w, r.Colors); err != nil {
		return err
	}
	return RenderCurves(w, r.Sessions, window, PlotOptions{})
}

func writeSection(w io.Writer, title string, lines []string) error {
	var b strings.Builder
	b.WriteString(title + "\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
