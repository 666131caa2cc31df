// Package palette holds the fixed stimulus tables: colors per difficulty,
// per-trial time budgets, and the emotional word list.
package palette

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty selects the color set size and the per-trial time budget.
type Difficulty int

// Difficulty tiers, ordered from the largest time budget to the smallest.
const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
)

// TestType selects the vocabulary, congruence rule, and scoring rule.
type TestType int

// Test types.
const (
	Classic TestType = iota
	Reverse
	Neutral
	Emotional
)

// allColors is ordered so that every tier is a prefix of the next one.
var allColors = []string{"RED", "BLUE", "GREEN", "YELLOW", "PURPLE", "ORANGE", "PINK", "BROWN", "GRAY", "BLACK"}

// EmotionalWords is the emotionally loaded vocabulary added for Emotional trials.
var EmotionalWords = []string{"LOVE", "HATE", "FEAR", "JOY", "SAD", "ANGRY", "CALM", "STRESS"}

// emotionalOptions are the distractor buttons offered next to the colors on Emotional tests.
var emotionalOptions = []string{"LOVE", "HATE", "FEAR", "JOY"}

var colorHex = map[string]string{
	"RED":    "#FF0000",
	"BLUE":   "#0000FF",
	"GREEN":  "#00FF00",
	"YELLOW": "#FFFF00",
	"PURPLE": "#800080",
	"ORANGE": "#FFA500",
	"PINK":   "#FFC0CB",
	"BROWN":  "#A52A2A",
	"GRAY":   "#A0A0A4",
	"BLACK":  "#000000",
}

var difficultyNames = []string{"Easy", "Medium", "Hard", "Expert"}

var testTypeNames = []string{"Classic", "Reverse", "Neutral", "Emotional"}

var testTypeTitles = []string{
	"Classic Stroop (Word vs Color)",
	"Reverse Stroop (Color vs Word)",
	"Neutral (Color Only)",
	"Emotional Stroop (Words with Emotional Content)",
}

// Difficulties lists every tier in order.
func Difficulties() []Difficulty { return []Difficulty{Easy, Medium, Hard, Expert} }

// TestTypes lists every test type in order.
func TestTypes() []TestType { return []TestType{Classic, Reverse, Neutral, Emotional} }

// Valid reports whether d is one of the defined tiers.
func (d Difficulty) Valid() bool { return d >= Easy && d <= Expert }

// String returns the canonical tier name.
func (d Difficulty) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// Colors returns a copy of the tier's color names: 4, 6, 8 or 10 entries.
func (d Difficulty) Colors() []string {
	n := 4
	switch d {
	case Medium:
		n = 6
	case Hard:
		n = 8
	case Expert:
		n = 10
	}
	out := make([]string, n)
	copy(out, allColors[:n])
	return out
}

// TimeLimitMs returns the per-trial budget in milliseconds.
func (d Difficulty) TimeLimitMs() int {
	switch d {
	case Medium:
		return 2500
	case Hard:
		return 2000
	case Expert:
		return 1500
	default:
		return 3000
	}
}

// TimeLimit returns the per-trial budget as a duration.
func (d Difficulty) TimeLimit() time.Duration {
	return time.Duration(d.TimeLimitMs()) * time.Millisecond
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDifficulty accepts a tier name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range difficultyNames {
		if strings.ToLower(name) == key {
			return Difficulty(i), nil
		}
	}
	return Easy, fmt.Errorf("unknown difficulty %q (want one of: %s)", s, strings.Join(difficultyNames, ", "))
}

// Valid reports whether t is one of the defined test types.
func (t TestType) Valid() bool { return t >= Classic && t <= Emotional }

// String returns the canonical short name.
func (t TestType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TestType(%d)", int(t))
	}
	return testTypeNames[t]
}

// Title returns the descriptive name shown to the subject.
func (t TestType) Title() string {
	if !t.Valid() {
		return t.String()
	}
	return testTypeTitles[t]
}

// GroundTruthIsWord reports whether responses are scored against the word
// rather than the displayed color. Only Reverse does this.
func (t TestType) GroundTruthIsWord() bool { return t == Reverse }

// MarshalText implements encoding.TextMarshaler.
func (t TestType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid test type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TestType) UnmarshalText(text []byte) error {
	parsed, err := ParseTestType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTestType accepts the short name ("classic") or the descriptive title
// written by older data files ("Classic Stroop (Word vs Color)").
func ParseTestType(s string) (TestType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range testTypeNames {
		if strings.ToLower(name) == key || strings.ToLower(testTypeTitles[i]) == key {
			return TestType(i), nil
		}
	}
	if first := strings.Fields(key); len(first) > 0 {
		for i, name := range testTypeNames {
			if strings.ToLower(name) == first[0] {
				return TestType(i), nil
			}
		}
	}
	return Classic, fmt.Errorf("unknown test type %q (want one of: %s)", s, strings.Join(testTypeNames, ", "))
}

// Vocabulary returns the words a trial may display for the given configuration.
// Neutral trials display no word at all; their vocabulary is still the color set.
func Vocabulary(t TestType, d Difficulty) []string {
	words := d.Colors()
	if t == Emotional {
		words = append(words, EmotionalWords...)
	}
	return words
}

// ResponseOptions returns the answer tokens offered to the subject, in display order.
func ResponseOptions(t TestType, d Difficulty) []string {
	options := d.Colors()
	if t == Emotional {
		options = append(options, emotionalOptions...)
	}
	return options
}

// IsColor reports whether word is one of the ten color names.
func IsColor(word string) bool {
	_, ok := colorHex[word]
	return ok
}

// Hex returns the render color for a color name, or "" for unknown names.
func Hex(color string) string {
	return colorHex[color]
}

// Key returns the keyboard shortcut for the i-th response option.
func Key(i int) string {
	const keys = "1234567890qwertyuiop"
	if i < 0 || i >= len(keys) {
		return ""
	}
	return string(keys[i])
}

// KeyIndex is the inverse of Key; it returns -1 for unbound keys.
func KeyIndex(key string) int {
	const keys = "1234567890qwertyuiop"
	if len(key) != 1 {
		return -1
	}
	return strings.Index(keys, key)
}
