// Package session runs one Stroop test administration: it presents trials in
// order, scores exactly one response or timeout per trial, and keeps the
// running correct count and response-time sum.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/stroop/internal/generator"
	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
	"github.com/verte-zerg/stroop/internal/stats"
)

// MaxTrials bounds the trial count accepted from configuration input.
const MaxTrials = 500

var (
	// ErrInvalidConfig wraps every configuration error.
	ErrInvalidConfig = errors.New("invalid session config")
	// ErrSessionComplete is returned when advancing past the last trial.
	ErrSessionComplete = errors.New("session is complete")
	// ErrNotPresented is returned when scoring with no presented trial.
	ErrNotPresented = errors.New("no trial is presented")
	// ErrAlreadyPresented is returned when presenting a trial twice.
	ErrAlreadyPresented = errors.New("current trial is already presented")
	// ErrIncomplete is returned when a record is requested before the last trial is scored.
	ErrIncomplete = errors.New("session is not complete")
)

// State is the position of the session in its trial lifecycle.
type State int

// Session states.
const (
	Pending State = iota
	Presented
	Complete
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Presented:
		return "presented"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Observer receives scoring events. Calls happen outside the session lock.
type Observer interface {
	TrialScored(cfg model.SessionConfig, trial model.Trial)
	SessionCompleted(rec model.SessionRecord)
}

// Timer is the part of *time.Timer the session needs.
type Timer interface {
	Stop() bool
}

// TimerFunc arms f to run once after d.
type TimerFunc func(d time.Duration, f func()) Timer

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTimerFunc replaces time.AfterFunc for trial timeouts.
func WithTimerFunc(fn TimerFunc) Option {
	return func(s *Session) { s.afterFunc = fn }
}

// WithObserver registers an observer for scoring events.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithID sets the archive id instead of a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session is the mutable aggregate for one administration. Trials are only
// mutated through Presentation.Respond and Presentation.Expire.
type Session struct {
	mu sync.Mutex

	id        string
	cfg       model.SessionConfig
	trials    []model.Trial
	cursor    int
	correct   int
	timeSum   float64
	startedAt time.Time
	endedAt   time.Time
	current   *Presentation

	now       func() time.Time
	afterFunc TimerFunc
	observer  Observer
}

// ValidateConfig rejects configuration input before a session is created.
func ValidateConfig(cfg model.SessionConfig) error {
	if strings.TrimSpace(cfg.User) == "" {
		return fmt.Errorf("%w: user name must not be empty", ErrInvalidConfig)
	}
	if cfg.Trials <= 0 || cfg.Trials > MaxTrials {
		return fmt.Errorf("%w: trial count must be between 1 and %d, got %d", ErrInvalidConfig, MaxTrials, cfg.Trials)
	}
	if !cfg.TestType.Valid() {
		return fmt.Errorf("%w: unknown test type %d", ErrInvalidConfig, int(cfg.TestType))
	}
	if !cfg.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %d", ErrInvalidConfig, int(cfg.Difficulty))
	}
	return nil
}

// Start validates cfg and builds a session from freshly generated trials.
func Start(cfg model.SessionConfig, gen *generator.Generator, opts ...Option) (*Session, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return New(cfg, gen.Generate(cfg.TestType, cfg.Difficulty, cfg.Trials), opts...)
}

// New builds a session over pre-generated trials. A session without trials
// is complete immediately.
func New(cfg model.SessionConfig, trials []model.Trial, opts ...Option) (*Session, error) {
	if !cfg.TestType.Valid() || !cfg.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown test type or difficulty", ErrInvalidConfig)
	}
	if cfg.Trials != len(trials) {
		return nil, fmt.Errorf("%w: trial count %d does not match %d generated trials", ErrInvalidConfig, cfg.Trials, len(trials))
	}
	s := &Session{
		cfg:    cfg,
		trials: make([]model.Trial, len(trials)),
		now:    time.Now,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for i, t := range trials {
		if t.Scored() || t.StartTime != nil {
			return nil, fmt.Errorf("%w: trial %d already has response data", ErrInvalidConfig, t.Number)
		}
		s.trials[i] = t.Clone()
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.startedAt = s.now()
	if len(s.trials) == 0 {
		s.endedAt = s.startedAt
	}
	return s, nil
}

// ID returns the archive id of the session.
func (s *Session) ID() string { return s.id }

// Config returns the configuration the session was created with.
func (s *Session) Config() model.SessionConfig { return s.cfg }

// Len returns the fixed number of trials.
func (s *Session) Len() int { return len(s.trials) }

// Cursor returns the zero-based index of the next unscored trial.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// CorrectCount returns the running number of correct answers.
func (s *Session) CorrectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correct
}

// TimeSum returns the running response-time sum in seconds.
func (s *Session) TimeSum() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeSum
}

// StartedAt returns the session creation instant.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// EndedAt returns the instant the last trial was scored, or zero.
func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// Complete reports whether every trial has been scored.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor == len(s.trials)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.cursor == len(s.trials):
		return Complete
	case s.current != nil:
		return Presented
	default:
		return Pending
	}
}

// Trial returns a copy of the i-th trial.
func (s *Session) Trial(i int) (model.Trial, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.trials) {
		return model.Trial{}, false
	}
	return s.trials[i].Clone(), true
}

// Trials returns copies of every trial in order.
func (s *Session) Trials() []model.Trial {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTrials(s.trials)
}

// Present starts the current trial: it records the presentation instant and
// returns the handle both the response path and the timeout path score through.
func (s *Session) Present() (*Presentation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.trials) {
		return nil, ErrSessionComplete
	}
	if s.current != nil {
		return nil, ErrAlreadyPresented
	}
	now := s.now()
	ts := model.NewTimestamp(now)
	s.trials[s.cursor].StartTime = &ts
	p := &Presentation{
		session: s,
		index:   s.cursor,
		trial:   s.trials[s.cursor].Clone(),
		start:   now,
	}
	s.current = p
	return p, nil
}

// Submit scores the presented trial with an explicit answer. Unlike the
// Presentation handle it fails loudly: ErrSessionComplete past the end and
// ErrNotPresented when no trial is waiting for an answer.
func (s *Session) Submit(token string) (Outcome, error) {
	return s.submit(&token)
}

// Timeout scores the presented trial as unanswered.
func (s *Session) Timeout() (Outcome, error) {
	return s.submit(nil)
}

func (s *Session) submit(token *string) (Outcome, error) {
	s.mu.Lock()
	p := s.current
	done := s.cursor >= len(s.trials)
	s.mu.Unlock()
	if done {
		return Outcome{}, ErrSessionComplete
	}
	if p == nil {
		return Outcome{}, ErrNotPresented
	}
	out, ok := p.resolve(token)
	if !ok {
		return Outcome{}, ErrNotPresented
	}
	return out, nil
}

// Record returns the archive record of a complete session.
func (s *Session) Record() (model.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor != len(s.trials) {
		return model.SessionRecord{}, ErrIncomplete
	}
	return s.recordLocked(), nil
}

// Result is the completion summary shown to the subject.
type Result struct {
	Accuracy float64
	AvgTime  float64
	Rating   string
}

// Result returns the summary of a complete session. ok is false while
// trials remain and for a session without trials.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor != len(s.trials) {
		return Result{}, false
	}
	acc, avg, ok := stats.SessionMetrics(s.correct, len(s.trials), s.timeSum)
	if !ok {
		return Result{}, false
	}
	return Result{Accuracy: acc, AvgTime: avg, Rating: stats.Rating(acc, avg)}, true
}

func (s *Session) recordLocked() model.SessionRecord {
	return model.SessionRecord{
		ID:             s.id,
		User:           s.cfg.User,
		TestType:       s.cfg.TestType,
		Difficulty:     s.cfg.Difficulty,
		NumTrials:      len(s.trials),
		StartTime:      model.NewTimestamp(s.startedAt),
		EndTime:        model.NewTimestamp(s.endedAt),
		Trials:         cloneTrials(s.trials),
		CurrentTrial:   s.cursor,
		CorrectAnswers: s.correct,
		TotalTime:      s.timeSum,
	}
}

// score applies a won race for presentation p. Only one caller per
// presentation reaches this point.
func (s *Session) score(p *Presentation, token *string) Outcome {
	s.mu.Lock()
	now := s.now()
	elapsed := now.Sub(p.start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	trial := &s.trials[p.index]
	truth := GroundTruth(s.cfg.TestType, *trial)
	correct := token != nil && *token == truth

	trial.ResponseTime = &elapsed
	if token != nil {
		answer := *token
		trial.UserAnswer = &answer
	}
	trial.Correct = &correct

	if correct {
		s.correct++
	}
	s.timeSum += elapsed
	s.cursor++
	s.current = nil
	complete := s.cursor == len(s.trials)
	var rec model.SessionRecord
	if complete {
		s.endedAt = now
		rec = s.recordLocked()
	}
	scored := trial.Clone()
	observer := s.observer
	cfg := s.cfg
	s.mu.Unlock()

	if observer != nil {
		observer.TrialScored(cfg, scored)
		if complete {
			observer.SessionCompleted(rec)
		}
	}
	return Outcome{
		Trial:        scored,
		Correct:      correct,
		TimedOut:     token == nil,
		ResponseTime: elapsed,
		GroundTruth:  truth,
		Complete:     complete,
	}
}

// GroundTruth returns the answer considered correct for trial under the
// test type's scoring rule: the word for Reverse, the ink color otherwise.
func GroundTruth(t palette.TestType, trial model.Trial) string {
	if t.GroundTruthIsWord() {
		return trial.Word
	}
	return trial.Color
}

func cloneTrials(trials []model.Trial) []model.Trial {
	out := make([]model.Trial, len(trials))
	for i, t := range trials {
		out[i] = t.Clone()
	}
	return out
}
