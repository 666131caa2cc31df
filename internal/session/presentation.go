package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/verte-zerg/stroop/internal/model"
)

// Outcome describes how a trial was scored.
type Outcome struct {
	Trial        model.Trial
	Correct      bool
	TimedOut     bool
	ResponseTime float64
	GroundTruth  string
	Complete     bool
}

// Presentation is the handle of one presented trial. Respond and Expire may
// race from different goroutines; the first call scores the trial and every
// later call is a no-op that reports false.
type Presentation struct {
	session *Session
	index   int
	trial   model.Trial
	start   time.Time

	scored atomic.Bool

	timerMu sync.Mutex
	timer   Timer
}

// Trial returns the stimulus as it was presented.
func (p *Presentation) Trial() model.Trial { return p.trial.Clone() }

// Index returns the zero-based position of the trial in the session.
func (p *Presentation) Index() int { return p.index }

// StartedAt returns the presentation instant.
func (p *Presentation) StartedAt() time.Time { return p.start }

// TimeLimit returns the trial's response budget.
func (p *Presentation) TimeLimit() time.Duration {
	return time.Duration(p.trial.TimeLimitMs) * time.Millisecond
}

// Scored reports whether either path already scored the trial.
func (p *Presentation) Scored() bool { return p.scored.Load() }

// Respond scores the trial with the subject's answer.
func (p *Presentation) Respond(token string) (Outcome, bool) {
	return p.resolve(&token)
}

// Expire scores the trial as a timeout.
func (p *Presentation) Expire() (Outcome, bool) {
	return p.resolve(nil)
}

// ArmTimeout schedules Expire after the trial's budget. onExpire runs only
// when the timeout wins the race. The timer is stopped as soon as a
// response wins.
func (p *Presentation) ArmTimeout(onExpire func(Outcome)) {
	timer := p.session.afterFunc(p.TimeLimit(), func() {
		out, ok := p.Expire()
		if ok && onExpire != nil {
			onExpire(out)
		}
	})
	p.timerMu.Lock()
	p.timer = timer
	p.timerMu.Unlock()
	if p.scored.Load() {
		p.stopTimer()
	}
}

func (p *Presentation) resolve(token *string) (Outcome, bool) {
	if !p.scored.CompareAndSwap(false, true) {
		return Outcome{}, false
	}
	p.stopTimer()
	return p.session.score(p, token), true
}

func (p *Presentation) stopTimer() {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
