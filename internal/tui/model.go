// Package tui provides the Bubble Tea test runner.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/stroop/internal/generator"
	"github.com/verte-zerg/stroop/internal/logger"
	"github.com/verte-zerg/stroop/internal/metrics"
	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
	"github.com/verte-zerg/stroop/internal/session"
	statsPkg "github.com/verte-zerg/stroop/internal/stats"
	"github.com/verte-zerg/stroop/internal/store"
)

const clockInterval = 50 * time.Millisecond

type screen int

const (
	screenWelcome screen = iota
	screenTrial
	screenResults
)

// Deps are the collaborators of the runner. Metrics and Now are optional.
type Deps struct {
	Store     store.ProfileStore
	Generator *generator.Generator
	Metrics   *metrics.Manager
	Log       logger.Logger
	Now       func() time.Time
}

type timeoutMsg struct{ seq int }

type clockMsg struct{ seq int }

type savedMsg struct{ err error }

// Model implements the Bubble Tea test UI.
type Model struct {
	config   model.SessionConfig
	deps     Deps
	log      logger.Logger
	now      func() time.Time
	screen   screen
	startErr error

	profiles model.Profiles

	width  int
	height int

	sess    *session.Session
	pres    *session.Presentation
	seq     int
	options []string
	last    *session.Outcome
	elapsed time.Duration

	result    session.Result
	hasResult bool
	saving    bool
	saveErr   error
}

// NewModel constructs the runner and loads the stored profiles. A load
// failure is logged and the runner continues with an empty mapping.
func NewModel(cfg model.SessionConfig, deps Deps) *Model {
	m := &Model{
		config: cfg,
		deps:   deps,
		log:    deps.Log,
		now:    deps.Now,
	}
	if m.log == nil {
		m.log = logger.Named("tui")
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.deps.Generator == nil {
		m.deps.Generator = generator.NewSeeded()
	}
	m.loadProfiles()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenWelcome:
			return m.updateWelcome(msg)
		case screenTrial:
			return m.updateTrial(msg)
		default:
			return m.updateResults(msg)
		}
	case timeoutMsg:
		if m.pres == nil || msg.seq != m.seq {
			return m, nil
		}
		out, ok := m.pres.Expire()
		if !ok {
			return m, nil
		}
		return m, m.advance(out)
	case clockMsg:
		if m.pres == nil || msg.seq != m.seq {
			return m, nil
		}
		m.elapsed = m.now().Sub(m.pres.StartedAt())
		return m, clockTick(msg.seq)
	case savedMsg:
		m.saving = false
		m.saveErr = msg.err
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) updateWelcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", " ":
		return m, m.start()
	case "left", "h":
		m.config.TestType = cycle(palette.TestTypes(), m.config.TestType, -1)
	case "right", "l", "tab":
		m.config.TestType = cycle(palette.TestTypes(), m.config.TestType, 1)
	case "up", "k":
		m.config.Difficulty = cycle(palette.Difficulties(), m.config.Difficulty, 1)
	case "down", "j":
		m.config.Difficulty = cycle(palette.Difficulties(), m.config.Difficulty, -1)
	}
	m.startErr = nil
	return m, nil
}

func (m *Model) updateTrial(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.abort()
		return m, nil
	}
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 || m.pres == nil {
		return m, nil
	}
	idx := palette.KeyIndex(string(msg.Runes[0]))
	if idx < 0 || idx >= len(m.options) {
		return m, nil
	}
	out, ok := m.pres.Respond(m.options[idx])
	if !ok {
		return m, nil
	}
	return m, m.advance(out)
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "r":
		m.screen = screenWelcome
		m.sess = nil
		m.last = nil
		m.hasResult = false
	}
	return m, nil
}

func (m *Model) start() tea.Cmd {
	opts := []session.Option{session.WithClock(m.now)}
	if m.deps.Metrics != nil {
		opts = append(opts, session.WithObserver(m.deps.Metrics))
	}
	sess, err := session.Start(m.config, m.deps.Generator, opts...)
	if err != nil {
		m.startErr = err
		return nil
	}
	m.sess = sess
	m.options = palette.ResponseOptions(m.config.TestType, m.config.Difficulty)
	m.last = nil
	m.saveErr = nil
	m.screen = screenTrial
	m.log.Debug(context.Background(), "session started",
		logger.String("id", sess.ID()),
		logger.String("user", m.config.User),
		logger.String("test_type", m.config.TestType.String()),
		logger.String("difficulty", m.config.Difficulty.String()),
		logger.Int("trials", m.config.Trials),
	)
	if sess.Complete() {
		return m.finish()
	}
	return m.present()
}

// present shows the next trial and arms its timeout. The timeout message
// carries the presentation sequence so a stale tick cannot score a later trial.
func (m *Model) present() tea.Cmd {
	p, err := m.sess.Present()
	if err != nil {
		m.log.Error(context.Background(), "failed to present trial", logger.Error(err))
		m.abort()
		return nil
	}
	m.pres = p
	m.seq++
	m.elapsed = 0
	seq := m.seq
	timeout := tea.Tick(p.TimeLimit(), func(time.Time) tea.Msg {
		return timeoutMsg{seq: seq}
	})
	return tea.Batch(timeout, clockTick(seq))
}

func (m *Model) advance(out session.Outcome) tea.Cmd {
	m.last = &out
	m.pres = nil
	if out.Complete {
		return m.finish()
	}
	return m.present()
}

func (m *Model) abort() {
	if m.sess != nil {
		m.log.Info(context.Background(), "session abandoned",
			logger.String("id", m.sess.ID()),
			logger.Int("scored", m.sess.Cursor()),
		)
	}
	m.sess = nil
	m.pres = nil
	m.seq++
	m.screen = screenWelcome
}

// finish folds the completed session into the in-memory profiles and saves
// a snapshot in the background. The folded profile stays in memory even
// when the save fails.
func (m *Model) finish() tea.Cmd {
	m.screen = screenResults
	m.result, m.hasResult = m.sess.Result()
	rec, err := m.sess.Record()
	if err != nil {
		m.log.Error(context.Background(), "failed to build session record", logger.Error(err))
		return nil
	}
	if _, err := statsPkg.Apply(m.profiles, rec); err != nil {
		if !errors.Is(err, statsPkg.ErrNoTrials) {
			m.log.Error(context.Background(), "failed to update profile", logger.Error(err))
		}
		return nil
	}
	m.log.Info(context.Background(), "session completed",
		logger.String("id", rec.ID),
		logger.String("user", rec.User),
		logger.Float64("accuracy", m.result.Accuracy),
		logger.Float64("avg_time", m.result.AvgTime),
	)
	m.saving = true
	return saveCmd(m.deps, m.log, m.profiles.Clone())
}

func saveCmd(deps Deps, log logger.Logger, snapshot model.Profiles) tea.Cmd {
	return func() tea.Msg {
		err := deps.Store.Save(context.Background(), snapshot)
		if err != nil {
			log.Error(context.Background(), "failed to save profiles", logger.Error(err))
			if deps.Metrics != nil {
				deps.Metrics.StoreFailed("save")
			}
		}
		return savedMsg{err: err}
	}
}

func (m *Model) loadProfiles() {
	profiles, err := m.deps.Store.Load(context.Background())
	if err != nil {
		m.log.Warn(context.Background(), "failed to load profiles, starting empty", logger.Error(err))
		if m.deps.Metrics != nil {
			m.deps.Metrics.StoreFailed("load")
		}
	}
	if profiles == nil {
		profiles = model.Profiles{}
	}
	m.profiles = profiles
}

func (m *Model) profile() (model.UserProfile, bool) {
	p, ok := m.profiles[m.config.User]
	return p, ok && p.TotalTests > 0
}

func clockTick(seq int) tea.Cmd {
	return tea.Tick(clockInterval, func(time.Time) tea.Msg {
		return clockMsg{seq: seq}
	})
}

func cycle[T comparable](values []T, current T, step int) T {
	for i, v := range values {
		if v == current {
			return values[(i+step+len(values))%len(values)]
		}
	}
	return values[0]
}
