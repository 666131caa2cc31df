package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/stroop/internal/generator"
	"github.com/verte-zerg/stroop/internal/metrics"
	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
	"github.com/verte-zerg/stroop/internal/session"
	"github.com/verte-zerg/stroop/internal/store"
)

type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type failingStore struct{ store.Memory }

func (f *failingStore) Save(context.Context, model.Profiles) error {
	return errors.New("disk full")
}

func newTestModel(t *testing.T, cfg model.SessionConfig, st store.ProfileStore) *Model {
	t.Helper()
	clock := &stepClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), step: 500 * time.Millisecond}
	return NewModel(cfg, Deps{
		Store:     st,
		Generator: generator.NewWithSeed(7),
		Metrics:   metrics.NewManager(),
		Now:       clock.Now,
	})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func answerKey(t *testing.T, m *Model, correct bool) tea.KeyMsg {
	t.Helper()
	truth := session.GroundTruth(m.config.TestType, m.pres.Trial())
	for i, opt := range m.options {
		if (opt == truth) == correct {
			return key(palette.Key(i))
		}
	}
	t.Fatalf("no option found for truth %q", truth)
	return tea.KeyMsg{}
}

func runSession(t *testing.T, m *Model, correct int) tea.Cmd {
	t.Helper()
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Fatalf("expected present command after start")
	}
	var last tea.Cmd
	for i := 0; i < m.config.Trials; i++ {
		if m.screen != screenTrial || m.pres == nil {
			t.Fatalf("trial %d not presented", i)
		}
		_, last = m.Update(answerKey(t, m, i < correct))
	}
	return last
}

func TestFullSessionSavesProfile(t *testing.T) {
	st := store.NewMemory()
	cfg := model.SessionConfig{User: "ann", TestType: palette.Classic, Difficulty: palette.Easy, Trials: 4}
	m := newTestModel(t, cfg, st)

	save := runSession(t, m, 3)
	if m.screen != screenResults {
		t.Fatalf("expected results screen, got %d", m.screen)
	}
	if !m.hasResult || m.result.Accuracy != 75 {
		t.Fatalf("unexpected result %+v", m.result)
	}
	if save == nil {
		t.Fatalf("expected save command")
	}
	m.Update(save())
	if m.saving || m.saveErr != nil {
		t.Fatalf("unexpected save state saving=%v err=%v", m.saving, m.saveErr)
	}

	profiles, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p := profiles["ann"]
	if p.TotalTests != 1 || p.TotalCorrect != 3 || len(p.AllTests) != 1 {
		t.Fatalf("unexpected stored profile %+v", p)
	}
	if !strings.Contains(m.View(), "Results saved.") {
		t.Fatalf("results view should confirm the save:\n%s", m.View())
	}
}

func TestSaveFailureKeepsProfileInMemory(t *testing.T) {
	cfg := model.SessionConfig{User: "bob", TestType: palette.Neutral, Difficulty: palette.Medium, Trials: 2}
	m := newTestModel(t, cfg, &failingStore{})

	save := runSession(t, m, 2)
	m.Update(save())
	if m.saveErr == nil {
		t.Fatalf("expected save error")
	}
	if p, ok := m.profile(); !ok || p.TotalTests != 1 {
		t.Fatalf("in-memory profile should keep the folded session: %+v", p)
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Fatalf("results view should report the failure")
	}
}

func TestTimeoutScoresTrial(t *testing.T) {
	cfg := model.SessionConfig{User: "ann", TestType: palette.Classic, Difficulty: palette.Hard, Trials: 2}
	m := newTestModel(t, cfg, store.NewMemory())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(timeoutMsg{seq: m.seq})
	if m.last == nil || !m.last.TimedOut || m.last.Correct {
		t.Fatalf("expected timed-out outcome, got %+v", m.last)
	}
	if m.sess.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", m.sess.Cursor())
	}
	if !strings.Contains(m.renderFooter(), "Last: timeout") {
		t.Fatalf("footer should show the timeout: %s", m.renderFooter())
	}
}

func TestStaleTimeoutIgnored(t *testing.T) {
	cfg := model.SessionConfig{User: "ann", TestType: palette.Reverse, Difficulty: palette.Easy, Trials: 3}
	m := newTestModel(t, cfg, store.NewMemory())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	first := m.seq

	m.Update(answerKey(t, m, true))
	m.Update(timeoutMsg{seq: first})
	if m.sess.Cursor() != 1 {
		t.Fatalf("stale timeout must not score the next trial, cursor=%d", m.sess.Cursor())
	}
	if tr, _ := m.sess.Trial(1); tr.Scored() {
		t.Fatalf("second trial should still be unscored")
	}
}

func TestUnboundKeysIgnored(t *testing.T) {
	cfg := model.SessionConfig{User: "ann", TestType: palette.Classic, Difficulty: palette.Easy, Trials: 2}
	m := newTestModel(t, cfg, store.NewMemory())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(key("9"))
	m.Update(key("z"))
	if m.sess.Cursor() != 0 {
		t.Fatalf("keys outside the option set must be ignored")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenWelcome || m.sess != nil {
		t.Fatalf("escape should abandon the session")
	}
}

func TestWelcomeCyclesAndRejectsConfig(t *testing.T) {
	cfg := model.SessionConfig{User: "", TestType: palette.Emotional, Difficulty: palette.Expert, Trials: 5}
	m := newTestModel(t, cfg, store.NewMemory())

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.config.TestType != palette.Classic || m.config.Difficulty != palette.Easy {
		t.Fatalf("expected wrap-around to Classic/Easy, got %s/%s", m.config.TestType, m.config.Difficulty)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenWelcome || m.startErr == nil {
		t.Fatalf("empty user must be rejected before a session starts")
	}
	if !strings.Contains(m.View(), "user name must not be empty") {
		t.Fatalf("welcome view should show the error:\n%s", m.View())
	}
}

func TestRenderFooterFormats(t *testing.T) {
	cfg := model.SessionConfig{User: "ann", TestType: palette.Classic, Difficulty: palette.Easy, Trials: 4}
	m := newTestModel(t, cfg, store.NewMemory())
	m.profiles["ann"] = model.UserProfile{TotalTests: 2, AvgAccuracy: 96.9, BestAccuracy: 97.8}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(answerKey(t, m, true))
	m.elapsed = 1234 * time.Millisecond

	out := m.renderFooter()
	for _, want := range []string{"Trial 2/4", "Time 1.23s", "Correct 1", "Last: correct", "All-time 96.9%", "Best 97.8%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}
