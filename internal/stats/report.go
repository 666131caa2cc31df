package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/stroop/internal/model"
)

// Loader reads every stored profile.
type Loader interface {
	Load(ctx context.Context) (model.Profiles, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	User    string
	Profile model.UserProfile
	// Sessions is the archive limited to the last cfg.Last entries.
	Sessions []model.SessionRecord
	// Window is the tail of Sessions used for per-color stats.
	Window       []model.SessionRecord
	Colors       []ColorStat
	Types        []TypeStat
	Interference Interference
	RTStdDev     float64
}

// BuildReport loads the profiles and prepares one user's report. An unknown
// user yields an empty report.
func BuildReport(ctx context.Context, loader Loader, cfg model.StatsConfig) (Report, error) {
	profiles, err := loader.Load(ctx)
	if err != nil {
		return Report{User: cfg.User}, fmt.Errorf("failed to load profiles: %w", err)
	}
	return NewReport(cfg, profiles[cfg.User]), nil
}

// NewReport prepares a report from an already loaded profile.
func NewReport(cfg model.StatsConfig, profile model.UserProfile) Report {
	sessions := tail(profile.AllTests, cfg.Last)
	window := tail(sessions, cfg.CurveWindow)
	return Report{
		User:         cfg.User,
		Profile:      profile,
		Sessions:     sessions,
		Window:       window,
		Colors:       ColorBreakdown(window),
		Types:        TypeBreakdown(sessions),
		Interference: MeasureInterference(sessions),
		RTStdDev:     ResponseTimeStdDev(sessions),
	}
}

func tail(sessions []model.SessionRecord, n int) []model.SessionRecord {
	if n <= 0 || len(sessions) <= n {
		return sessions
	}
	return sessions[len(sessions)-n:]
}
