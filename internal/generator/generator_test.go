package generator

import (
	"testing"

	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
)

func contains(items []string, item string) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}

func TestGenerateTableInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		gen := NewWithSeed(seed)
		for _, tt := range palette.TestTypes() {
			for _, d := range palette.Difficulties() {
				trials := gen.Generate(tt, d, 30)
				if len(trials) != 30 {
					t.Fatalf("expected 30 trials, got %d", len(trials))
				}
				colors := d.Colors()
				for i, tr := range trials {
					if tr.Number != i+1 {
						t.Fatalf("%s/%s: trial %d has number %d", tt, d, i, tr.Number)
					}
					if tr.TimeLimitMs != d.TimeLimitMs() {
						t.Fatalf("%s/%s: unexpected time limit %d", tt, d, tr.TimeLimitMs)
					}
					if !contains(colors, tr.Color) {
						t.Fatalf("%s/%s: color %q outside active set", tt, d, tr.Color)
					}
					if tr.Scored() || tr.StartTime != nil || tr.ResponseTime != nil || tr.UserAnswer != nil {
						t.Fatalf("%s/%s: expected unset response fields", tt, d)
					}
					checkRule(t, tt, d, tr)
				}
			}
		}
	}
}

func checkRule(t *testing.T, tt palette.TestType, d palette.Difficulty, tr model.Trial) {
	t.Helper()
	switch tt {
	case palette.Classic:
		if !contains(d.Colors(), tr.Word) {
			t.Fatalf("classic word %q outside color set", tr.Word)
		}
		if tr.Word == tr.Color {
			t.Fatalf("classic trial is congruent: %q", tr.Word)
		}
	case palette.Reverse:
		if tr.Word != tr.Color {
			t.Fatalf("reverse trial word %q != color %q", tr.Word, tr.Color)
		}
	case palette.Neutral:
		if tr.Word != "" {
			t.Fatalf("neutral trial has word %q", tr.Word)
		}
	case palette.Emotional:
		if !contains(palette.Vocabulary(palette.Emotional, d), tr.Word) {
			t.Fatalf("emotional word %q outside vocabulary", tr.Word)
		}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a := NewWithSeed(42).Generate(palette.Emotional, palette.Hard, 50)
	b := NewWithSeed(42).Generate(palette.Emotional, palette.Hard, 50)
	for i := range a {
		if a[i].Word != b[i].Word || a[i].Color != b[i].Color {
			t.Fatalf("trial %d differs between equal seeds", i)
		}
	}
}

func TestGenerateEmotionalUsesEmotionalWords(t *testing.T) {
	trials := NewWithSeed(7).Generate(palette.Emotional, palette.Easy, 200)
	found := false
	for _, tr := range trials {
		if contains(palette.EmotionalWords, tr.Word) {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected at least one emotional word in 200 trials")
	}
}

func TestGenerateZeroCount(t *testing.T) {
	trials := NewSeeded().Generate(palette.Classic, palette.Easy, 0)
	if trials == nil || len(trials) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", trials)
	}
}
