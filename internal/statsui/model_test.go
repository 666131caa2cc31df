package statsui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
	"github.com/verte-zerg/stroop/internal/stats"
	"github.com/verte-zerg/stroop/internal/store"
)

func completed(user string, day, n, correct int) model.SessionRecord {
	end := time.Date(2024, 5, day, 10, 0, 0, 0, time.UTC)
	trials := make([]model.Trial, n)
	for i := range trials {
		rt := 1.0
		answer := "GREEN"
		ok := i < correct
		if !ok {
			answer = "RED"
		}
		trials[i] = model.Trial{Number: i + 1, Word: "RED", Color: "GREEN", TimeLimitMs: 3000,
			ResponseTime: &rt, UserAnswer: &answer, Correct: &ok}
	}
	return model.SessionRecord{
		ID: "s", User: user, TestType: palette.Classic, Difficulty: palette.Easy,
		NumTrials: n, EndTime: model.NewTimestamp(end), Trials: trials,
		CurrentTrial: n, CorrectAnswers: correct, TotalTime: float64(n),
	}
}

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	profiles := model.Profiles{}
	for day, correct := range []int{2, 3, 4} {
		if _, err := stats.Apply(profiles, completed("ann", day+1, 4, correct)); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	st := store.NewMemory()
	if err := st.Save(context.Background(), profiles); err != nil {
		t.Fatalf("save: %v", err)
	}
	return st
}

func TestRecentRowsNewestFirst(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{User: "ann", CurveWindow: 1})
	rows := m.recent.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][4] != "100.0%" || rows[0][6] != "Excellent" {
		t.Fatalf("expected newest session first, got %v", rows[0])
	}
	if rows[2][4] != "50.0%" {
		t.Fatalf("expected oldest session last, got %v", rows[2])
	}
	if got := len(m.colors.Rows()); got != 1 {
		t.Fatalf("expected one color row, got %d", got)
	}
}

func TestViewTabsAndEmptyUser(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{User: "nobody", CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if !strings.Contains(m.View(), "No tests recorded for nobody.") {
		t.Fatalf("expected empty overview:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabColors {
		t.Fatalf("expected colors tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "No color stats found.") {
		t.Fatalf("expected empty colors tab")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("tabs should wrap around")
	}
}

func TestFilterSwitchesUser(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{User: "nobody", CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("ann")
	m.filterInputs[1].SetValue("2")
	m.filterInputs[2].SetValue("x")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("invalid window must keep the form open")
	}

	m.filterInputs[2].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter to apply")
	}
	if m.cfg.User != "ann" || m.cfg.Last != 2 || m.cfg.CurveWindow != 3 {
		t.Fatalf("unexpected config %+v", m.cfg)
	}
	if len(m.report.Sessions) != 2 {
		t.Fatalf("expected last 2 sessions, got %d", len(m.report.Sessions))
	}
	if !strings.Contains(m.View(), "Tests") {
		t.Fatalf("overview should show summary cards")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, c := range cases {
		if got := nextCurveWindow(c.in); got != c.next {
			t.Fatalf("next(%d) = %d, want %d", c.in, got, c.next)
		}
		if got := prevCurveWindow(c.in); got != c.prev {
			t.Fatalf("prev(%d) = %d, want %d", c.in, got, c.prev)
		}
	}
}
