// Package generator builds Stroop trial sequences.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
)

// Generator produces randomized trials from an explicit random source.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator drawing from src. Callers that want a fresh
// sequence per session pass a newly seeded source each time.
func New(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// NewSeeded returns a Generator seeded with the current time.
func NewSeeded() *Generator {
	return New(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return New(rand.NewSource(seed))
}

// Generate builds count trials for the test type and difficulty. Every trial
// carries its 1-based position and the difficulty's time limit; response
// fields are left unset.
func (g *Generator) Generate(testType palette.TestType, difficulty palette.Difficulty, count int) []model.Trial {
	if count <= 0 {
		return []model.Trial{}
	}
	colors := difficulty.Colors()
	words := palette.Vocabulary(testType, difficulty)
	limit := difficulty.TimeLimitMs()

	trials := make([]model.Trial, 0, count)
	for i := 0; i < count; i++ {
		var word, color string
		switch testType {
		case palette.Reverse:
			color = g.pick(colors)
			word = color
		case palette.Neutral:
			color = g.pick(colors)
		case palette.Emotional:
			word = g.pick(words)
			color = g.pick(colors)
		default:
			word = g.pick(words)
			color = g.pick(without(colors, word))
		}
		trials = append(trials, model.Trial{
			Number:      i + 1,
			Word:        word,
			Color:       color,
			TimeLimitMs: limit,
		})
	}
	return trials
}

func (g *Generator) pick(items []string) string {
	return items[g.rnd.Intn(len(items))]
}

// without drops word from colors when it is one of them, so a classic trial
// never shows a color name in its own ink.
func without(colors []string, word string) []string {
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		if c != word {
			out = append(out, c)
		}
	}
	return out
}
