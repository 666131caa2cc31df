package stats

import (
	"math"
	"sort"

	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
)

// ColorStat aggregates scored trials by displayed ink color.
type ColorStat struct {
	Color    string
	Trials   int
	Correct  int
	Timeouts int
	TimeSum  float64
}

// Accuracy returns the percentage of correct trials, or 100 when empty.
func (c ColorStat) Accuracy() float64 {
	if c.Trials == 0 {
		return 100
	}
	return 100 * float64(c.Correct) / float64(c.Trials)
}

// MeanRT returns the mean response time in seconds.
func (c ColorStat) MeanRT() float64 {
	if c.Trials == 0 {
		return 0
	}
	return c.TimeSum / float64(c.Trials)
}

// TypeStat aggregates sessions by test type.
type TypeStat struct {
	TestType palette.TestType
	Sessions int
	Trials   int
	Correct  int
	TimeSum  float64
}

// Accuracy returns the percentage of correct trials.
func (s TypeStat) Accuracy() float64 {
	acc, _, _ := SessionMetrics(s.Correct, s.Trials, s.TimeSum)
	return acc
}

// MeanRT returns the mean response time in seconds.
func (s TypeStat) MeanRT() float64 {
	_, avg, _ := SessionMetrics(s.Correct, s.Trials, s.TimeSum)
	return avg
}

// Interference is the Stroop effect: how much slower correct answers are on
// incongruent trials than on congruent ones.
type Interference struct {
	CongruentRT       float64
	IncongruentRT     float64
	CongruentTrials   int
	IncongruentTrials int
}

// Effect returns IncongruentRT - CongruentRT. ok is false unless both
// conditions have at least one correct trial.
func (i Interference) Effect() (float64, bool) {
	if i.CongruentTrials == 0 || i.IncongruentTrials == 0 {
		return 0, false
	}
	return i.IncongruentRT - i.CongruentRT, true
}

// ColorBreakdown aggregates scored trials of the sessions per ink color,
// weakest color first.
func ColorBreakdown(sessions []model.SessionRecord) []ColorStat {
	byColor := map[string]*ColorStat{}
	forEachScored(sessions, func(_ model.SessionRecord, t model.Trial) {
		stat, ok := byColor[t.Color]
		if !ok {
			stat = &ColorStat{Color: t.Color}
			byColor[t.Color] = stat
		}
		stat.Trials++
		if *t.Correct {
			stat.Correct++
		}
		if t.TimedOut() {
			stat.Timeouts++
		}
		if t.ResponseTime != nil {
			stat.TimeSum += *t.ResponseTime
		}
	})
	out := make([]ColorStat, 0, len(byColor))
	for _, stat := range byColor {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Accuracy(), out[j].Accuracy()
		if ai == aj {
			return out[i].Color < out[j].Color
		}
		return ai < aj
	})
	return out
}

// WeakestColors returns up to n color names with the lowest accuracy.
func WeakestColors(sessions []model.SessionRecord, n int) []string {
	breakdown := ColorBreakdown(sessions)
	if n <= 0 || n > len(breakdown) {
		n = len(breakdown)
	}
	out := make([]string, 0, n)
	for _, stat := range breakdown[:n] {
		out = append(out, stat.Color)
	}
	return out
}

// TypeBreakdown aggregates sessions per test type in declaration order.
// Types without sessions are omitted.
func TypeBreakdown(sessions []model.SessionRecord) []TypeStat {
	byType := map[palette.TestType]*TypeStat{}
	for _, rec := range sessions {
		stat, ok := byType[rec.TestType]
		if !ok {
			stat = &TypeStat{TestType: rec.TestType}
			byType[rec.TestType] = stat
		}
		stat.Sessions++
		stat.Trials += rec.NumTrials
		stat.Correct += rec.CorrectAnswers
		stat.TimeSum += rec.TotalTime
	}
	out := make([]TypeStat, 0, len(byType))
	for _, tt := range palette.TestTypes() {
		if stat, ok := byType[tt]; ok {
			out = append(out, *stat)
		}
	}
	return out
}

// MeasureInterference compares correct-trial response times on congruent and
// incongruent stimuli. Neutral trials and emotional words count as neither.
func MeasureInterference(sessions []model.SessionRecord) Interference {
	var out Interference
	var congruentSum, incongruentSum float64
	forEachScored(sessions, func(_ model.SessionRecord, t model.Trial) {
		if !*t.Correct || t.ResponseTime == nil {
			return
		}
		switch {
		case t.Congruent():
			out.CongruentTrials++
			congruentSum += *t.ResponseTime
		case t.Incongruent():
			out.IncongruentTrials++
			incongruentSum += *t.ResponseTime
		}
	})
	if out.CongruentTrials > 0 {
		out.CongruentRT = congruentSum / float64(out.CongruentTrials)
	}
	if out.IncongruentTrials > 0 {
		out.IncongruentRT = incongruentSum / float64(out.IncongruentTrials)
	}
	return out
}

// ResponseTimeStdDev returns the sample standard deviation of correct-trial
// response times, or 0 with fewer than two such trials.
func ResponseTimeStdDev(sessions []model.SessionRecord) float64 {
	var times []float64
	forEachScored(sessions, func(_ model.SessionRecord, t model.Trial) {
		if *t.Correct && t.ResponseTime != nil {
			times = append(times, *t.ResponseTime)
		}
	})
	if len(times) < 2 {
		return 0
	}
	var mean float64
	for _, v := range times {
		mean += v
	}
	mean /= float64(len(times))
	var sq float64
	for _, v := range times {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(times)-1))
}

func forEachScored(sessions []model.SessionRecord, fn func(model.SessionRecord, model.Trial)) {
	for _, rec := range sessions {
		for _, t := range rec.Trials {
			if t.Scored() {
				fn(rec, t)
			}
		}
	}
}
