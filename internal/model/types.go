// Package model defines shared data structures.
package model

import "github.com/verte-zerg/stroop/internal/palette"

// RecentLimit bounds UserProfile.RecentTests.
const RecentLimit = 10

// SessionConfig describes one test administration.
type SessionConfig struct {
	User       string
	TestType   palette.TestType
	Difficulty palette.Difficulty
	Trials     int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	User        string
	Last        int
	CurveWindow int
}

// Trial is one stimulus-and-response unit. Response fields stay nil until
// the trial is scored; a nil UserAnswer on a scored trial means timeout.
type Trial struct {
	Number       int        `json:"trial_num" yaml:"trial_num"`
	Word         string     `json:"word" yaml:"word"`
	Color        string     `json:"color" yaml:"color"`
	TimeLimitMs  int        `json:"time_limit" yaml:"time_limit"`
	StartTime    *Timestamp `json:"start_time" yaml:"start_time"`
	ResponseTime *float64   `json:"response_time" yaml:"response_time"`
	UserAnswer   *string    `json:"user_answer" yaml:"user_answer"`
	Correct      *bool      `json:"correct" yaml:"correct"`
}

// Scored reports whether the trial has been evaluated.
func (t Trial) Scored() bool { return t.Correct != nil }

// TimedOut reports whether the trial was scored without an answer.
func (t Trial) TimedOut() bool { return t.Correct != nil && t.UserAnswer == nil }

// Congruent reports whether the displayed word names the displayed color.
func (t Trial) Congruent() bool { return t.Word != "" && t.Word == t.Color }

// Incongruent reports whether the word is a color name that differs from the ink.
func (t Trial) Incongruent() bool {
	return t.Word != "" && t.Word != t.Color && palette.IsColor(t.Word)
}

// SessionRecord is the full archive entry of a completed session.
type SessionRecord struct {
	ID             string             `json:"id" yaml:"id"`
	User           string             `json:"user" yaml:"user"`
	TestType       palette.TestType   `json:"test_type" yaml:"test_type"`
	Difficulty     palette.Difficulty `json:"difficulty" yaml:"difficulty"`
	NumTrials      int                `json:"num_trials" yaml:"num_trials"`
	StartTime      Timestamp          `json:"start_time" yaml:"start_time"`
	EndTime        Timestamp          `json:"end_time" yaml:"end_time"`
	Trials         []Trial            `json:"trials" yaml:"trials"`
	CurrentTrial   int                `json:"current_trial" yaml:"current_trial"`
	CorrectAnswers int                `json:"correct_answers" yaml:"correct_answers"`
	TotalTime      float64            `json:"total_time" yaml:"total_time"`
}

// Complete reports whether every trial of the record was scored.
func (r SessionRecord) Complete() bool {
	return r.CurrentTrial == len(r.Trials) && len(r.Trials) == r.NumTrials
}

// SessionSummary is one entry of the bounded recent-history window.
type SessionSummary struct {
	Date       Timestamp          `json:"date" yaml:"date"`
	TestType   palette.TestType   `json:"test_type" yaml:"test_type"`
	Difficulty palette.Difficulty `json:"difficulty" yaml:"difficulty"`
	Accuracy   float64            `json:"accuracy" yaml:"accuracy"`
	AvgTime    float64            `json:"avg_time" yaml:"avg_time"`
	Trials     int                `json:"trials" yaml:"trials"`
}

// UserProfile holds lifetime statistics for one user name.
type UserProfile struct {
	TotalTests      int              `json:"total_tests" yaml:"total_tests"`
	TotalCorrect    int              `json:"total_correct" yaml:"total_correct"`
	TotalTrials     int              `json:"total_trials" yaml:"total_trials"`
	TotalTime       float64          `json:"total_time" yaml:"total_time"`
	AvgAccuracy     float64          `json:"avg_accuracy" yaml:"avg_accuracy"`
	AvgResponseTime float64          `json:"avg_response_time" yaml:"avg_response_time"`
	BestAccuracy    float64          `json:"best_accuracy" yaml:"best_accuracy"`
	RecentTests     []SessionSummary `json:"recent_tests" yaml:"recent_tests"`
	AllTests        []SessionRecord  `json:"all_tests" yaml:"all_tests"`
}

// Clone returns a deep copy so callers never share history slices.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.RecentTests = append([]SessionSummary(nil), p.RecentTests...)
	out.AllTests = make([]SessionRecord, len(p.AllTests))
	for i, rec := range p.AllTests {
		out.AllTests[i] = rec.Clone()
	}
	return out
}

// Clone returns a deep copy of the record, including trial response fields.
func (r SessionRecord) Clone() SessionRecord {
	out := r
	out.Trials = make([]Trial, len(r.Trials))
	for i, t := range r.Trials {
		out.Trials[i] = t.Clone()
	}
	return out
}

// Clone returns a copy whose pointer fields do not alias t.
func (t Trial) Clone() Trial {
	out := t
	if t.StartTime != nil {
		v := *t.StartTime
		out.StartTime = &v
	}
	if t.ResponseTime != nil {
		v := *t.ResponseTime
		out.ResponseTime = &v
	}
	if t.UserAnswer != nil {
		v := *t.UserAnswer
		out.UserAnswer = &v
	}
	if t.Correct != nil {
		v := *t.Correct
		out.Correct = &v
	}
	return out
}

// Profiles maps case-sensitive user names to their profiles.
type Profiles map[string]UserProfile

// Names returns the user names in the mapping, unsorted.
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	return names
}

// Clone returns a deep copy of the mapping.
func (p Profiles) Clone() Profiles {
	out := make(Profiles, len(p))
	for name, profile := range p {
		out[name] = profile.Clone()
	}
	return out
}
