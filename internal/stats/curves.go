package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/stroop/internal/model"
)

const sparkRamp = "_.-~=*#"

// Curves holds one value per archived session, oldest first.
type Curves struct {
	Accuracy []float64
	AvgTime  []float64
}

// SessionCurves extracts accuracy and mean response time per session.
// Sessions without trials are skipped.
func SessionCurves(sessions []model.SessionRecord) Curves {
	var c Curves
	for _, rec := range sessions {
		acc, avg, ok := SessionMetrics(rec.CorrectAnswers, rec.NumTrials, rec.TotalTime)
		if !ok {
			continue
		}
		c.Accuracy = append(c.Accuracy, acc)
		c.AvgTime = append(c.AvgTime, avg)
	}
	return c
}

// Smooth applies MovingAverage to both series.
func (c Curves) Smooth(window int) Curves {
	return Curves{
		Accuracy: MovingAverage(c.Accuracy, window),
		AvgTime:  MovingAverage(c.AvgTime, window),
	}
}

// MovingAverage returns the trailing mean over window values. The first
// window-1 entries average over what is available so far.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders values as a one-line ASCII trend.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := bounds(values)
	last := len(sparkRamp) - 1
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkRamp[last/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkRamp[clamp(idx, 0, last)])
	}
	return b.String()
}

func bounds(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
