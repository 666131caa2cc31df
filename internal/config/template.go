package config

import "fmt"

// Defaults used when neither flags, environment nor file set a value.
const (
	DefaultType       = "classic"
	DefaultDifficulty = "easy"
	DefaultTrials     = 20
	DefaultBackend    = "sqlite"
	DefaultLogLevel   = "info"
)

// DefaultTemplate is written by `stroop config` when no file exists.
func DefaultTemplate() string {
	return fmt.Sprintf(`# stroop configuration
# Uncomment a value to enable it. CLI flags and STROOP_* variables override it.

[session]
# user = "alice"          # Profile name (required unless --user is given)
# type = %q         # classic, reverse, neutral or emotional
# difficulty = %q      # easy, medium, hard or expert
# trials = %d             # Trials per session (1-500)

[store]
# backend = %q      # sqlite or json
# path = ""               # Defaults to $XDG_DATA_HOME/stroop/

[log]
# level = %q          # debug, info, warn or error
# file = ""               # Log file while the TUI is running

[metrics]
# file = ""               # Write Prometheus metrics here after each session
`,
		DefaultType,
		DefaultDifficulty,
		DefaultTrials,
		DefaultBackend,
		DefaultLogLevel,
	)
}
