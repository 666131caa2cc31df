// Package stats folds completed sessions into lifetime profiles and renders
// reports over them.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/stroop/internal/model"
)

var (
	// ErrNoTrials is returned when folding a session without trials.
	ErrNoTrials = errors.New("session has no trials")
	// ErrIncomplete is returned when folding a session with unscored trials.
	ErrIncomplete = errors.New("session is not complete")
)

type ratingStep struct {
	minAccuracy float64
	maxAvgTime  float64
	label       string
}

// Evaluated top to bottom; the first matching step wins.
var ratingLadder = []ratingStep{
	{minAccuracy: 90, maxAvgTime: 1.5, label: "Excellent"},
	{minAccuracy: 80, maxAvgTime: 2.0, label: "Very Good"},
	{minAccuracy: 70, maxAvgTime: 2.5, label: "Good"},
	{minAccuracy: 60, maxAvgTime: 3.0, label: "Fair"},
}

// RatingFallback is the rating below the lowest step of the ladder.
const RatingFallback = "Needs Improvement"

// SessionMetrics computes accuracy (percent) and mean response time
// (seconds). ok is false when trials is zero.
func SessionMetrics(correct, trials int, timeSum float64) (accuracy, avgTime float64, ok bool) {
	if trials <= 0 {
		return 0, 0, false
	}
	n := float64(trials)
	return 100 * float64(correct) / n, timeSum / n, true
}

// Rating maps a session's accuracy and mean response time to a label.
func Rating(accuracy, avgTime float64) string {
	for _, step := range ratingLadder {
		if accuracy >= step.minAccuracy && avgTime <= step.maxAvgTime {
			return step.label
		}
	}
	return RatingFallback
}

// Fold returns profile updated with a completed session. The input profile
// is not modified.
func Fold(profile model.UserProfile, rec model.SessionRecord) (model.UserProfile, error) {
	if rec.NumTrials == 0 {
		return profile, ErrNoTrials
	}
	if !rec.Complete() {
		return profile, fmt.Errorf("%w: %d of %d trials scored", ErrIncomplete, rec.CurrentTrial, rec.NumTrials)
	}
	accuracy, avgTime, _ := SessionMetrics(rec.CorrectAnswers, rec.NumTrials, rec.TotalTime)

	out := profile.Clone()
	out.TotalTests++
	out.TotalCorrect += rec.CorrectAnswers
	out.TotalTrials += rec.NumTrials
	out.TotalTime += rec.TotalTime

	out.AvgAccuracy = 100 * float64(out.TotalCorrect) / float64(out.TotalTrials)
	out.AvgResponseTime = out.TotalTime / float64(out.TotalTrials)
	out.BestAccuracy = math.Max(out.BestAccuracy, accuracy)

	out.RecentTests = append(out.RecentTests, model.SessionSummary{
		Date:       rec.EndTime,
		TestType:   rec.TestType,
		Difficulty: rec.Difficulty,
		Accuracy:   roundTo(accuracy, 1),
		AvgTime:    roundTo(avgTime, 2),
		Trials:     rec.NumTrials,
	})
	if extra := len(out.RecentTests) - model.RecentLimit; extra > 0 {
		out.RecentTests = append([]model.SessionSummary(nil), out.RecentTests[extra:]...)
	}
	out.AllTests = append(out.AllTests, rec.Clone())
	return out, nil
}

// Apply folds rec into the profile of rec.User, creating it when missing.
// profiles is left untouched on error.
func Apply(profiles model.Profiles, rec model.SessionRecord) (model.UserProfile, error) {
	updated, err := Fold(profiles[rec.User], rec)
	if err != nil {
		return updated, err
	}
	profiles[rec.User] = updated
	return updated, nil
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
