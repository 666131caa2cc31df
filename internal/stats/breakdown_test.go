package stats

import (
	"math"
	"testing"

	"github.com/verte-zerg/stroop/internal/model"
)

func scored(word, color, answer string, rt float64) model.Trial {
	tr := model.Trial{Word: word, Color: color, ResponseTime: ptr(rt), Correct: ptr(answer == color)}
	if answer != "" {
		tr.UserAnswer = ptr(answer)
	} else {
		tr.Correct = ptr(false)
	}
	return tr
}

func TestColorBreakdown(t *testing.T) {
	sessions := []model.SessionRecord{{Trials: []model.Trial{
		scored("RED", "BLUE", "BLUE", 1),
		scored("RED", "BLUE", "RED", 2),
		scored("BLUE", "RED", "RED", 1),
		scored("GREEN", "YELLOW", "", 3),
		{Word: "RED", Color: "GREEN"},
	}}}
	got := ColorBreakdown(sessions)
	if len(got) != 3 {
		t.Fatalf("expected 3 colors, got %+v", got)
	}
	if got[0].Color != "YELLOW" || got[0].Timeouts != 1 || got[0].Accuracy() != 0 {
		t.Fatalf("expected YELLOW first, got %+v", got[0])
	}
	if got[1].Color != "BLUE" || got[1].Accuracy() != 50 || got[1].MeanRT() != 1.5 {
		t.Fatalf("unexpected BLUE stat %+v", got[1])
	}
	if got[2].Color != "RED" {
		t.Fatalf("expected RED last, got %+v", got[2])
	}
	weak := WeakestColors(sessions, 2)
	if len(weak) != 2 || weak[0] != "YELLOW" || weak[1] != "BLUE" {
		t.Fatalf("unexpected weakest colors %v", weak)
	}
}

func TestMeasureInterference(t *testing.T) {
	sessions := []model.SessionRecord{{Trials: []model.Trial{
		scored("RED", "RED", "RED", 0.6),
		scored("BLUE", "BLUE", "BLUE", 0.8),
		scored("RED", "BLUE", "BLUE", 1.0),
		scored("GREEN", "BLUE", "BLUE", 1.2),
		scored("GREEN", "BLUE", "RED", 5),
		scored("LOVE", "BLUE", "BLUE", 9),
		scored("", "BLUE", "BLUE", 9),
	}}}
	got := MeasureInterference(sessions)
	if got.CongruentTrials != 2 || got.IncongruentTrials != 2 {
		t.Fatalf("unexpected counts %+v", got)
	}
	effect, ok := got.Effect()
	if !ok || math.Abs(effect-0.4) > 1e-9 {
		t.Fatalf("expected 0.4s effect, got %v ok=%v", effect, ok)
	}
	if _, ok := (Interference{IncongruentTrials: 3}).Effect(); ok {
		t.Fatalf("effect needs both conditions")
	}
}

func TestResponseTimeStdDev(t *testing.T) {
	sessions := []model.SessionRecord{{Trials: []model.Trial{
		scored("RED", "BLUE", "BLUE", 1),
		scored("RED", "BLUE", "BLUE", 2),
		scored("RED", "BLUE", "BLUE", 3),
		scored("RED", "BLUE", "RED", 10),
	}}}
	if got := ResponseTimeStdDev(sessions); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := ResponseTimeStdDev(nil); got != 0 {
		t.Fatalf("expected 0 for no trials, got %v", got)
	}
}

func TestTypeBreakdownOrder(t *testing.T) {
	a := record("u", 2, 2, 1)
	b := record("u", 2, 0, 2)
	b.TestType = 3
	got := TypeBreakdown([]model.SessionRecord{b, a, a})
	if len(got) != 2 || got[0].Sessions != 2 || got[1].Sessions != 1 {
		t.Fatalf("unexpected breakdown %+v", got)
	}
	if got[0].Accuracy() != 100 || got[1].MeanRT() != 2 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}
