package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/palette"
)

func ptr[T any](v T) *T { return &v }

func sampleProfiles() model.Profiles {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := model.SessionRecord{
		ID:         "3b1f",
		User:       "alice",
		TestType:   palette.Reverse,
		Difficulty: palette.Hard,
		NumTrials:  2,
		StartTime:  model.NewTimestamp(start),
		EndTime:    model.NewTimestamp(start.Add(5 * time.Second)),
		Trials: []model.Trial{
			{
				Number:       1,
				Word:         "RED",
				Color:        "RED",
				TimeLimitMs:  2000,
				StartTime:    ptr(model.NewTimestamp(start.Add(time.Second))),
				ResponseTime: ptr(0.75),
				UserAnswer:   ptr("RED"),
				Correct:      ptr(true),
			},
			{
				Number:       2,
				Word:         "PINK",
				Color:        "PINK",
				TimeLimitMs:  2000,
				StartTime:    ptr(model.NewTimestamp(start.Add(2 * time.Second))),
				ResponseTime: ptr(2.0),
				Correct:      ptr(false),
			},
		},
		CurrentTrial:   2,
		CorrectAnswers: 1,
		TotalTime:      2.75,
	}
	return model.Profiles{
		"alice": {
			TotalTests:      1,
			TotalCorrect:    1,
			TotalTrials:     2,
			TotalTime:       2.75,
			AvgAccuracy:     50,
			AvgResponseTime: 1.375,
			BestAccuracy:    50,
			RecentTests: []model.SessionSummary{{
				Date:       rec.EndTime,
				TestType:   palette.Reverse,
				Difficulty: palette.Hard,
				Accuracy:   50,
				AvgTime:    1.38,
				Trials:     2,
			}},
			AllTests: []model.SessionRecord{rec},
		},
		"bob": {
			RecentTests: []model.SessionSummary{},
			AllTests:    []model.SessionRecord{},
		},
	}
}

func assertProfilesEqual(t *testing.T, want, got model.Profiles) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d profiles, got %d", len(want), len(got))
	}
	for name, w := range want {
		g, ok := got[name]
		if !ok {
			t.Fatalf("missing profile %q", name)
		}
		if g.TotalTests != w.TotalTests || g.TotalTime != w.TotalTime || g.BestAccuracy != w.BestAccuracy {
			t.Fatalf("%s: totals differ: %+v vs %+v", name, w, g)
		}
		if len(g.AllTests) != len(w.AllTests) || len(g.RecentTests) != len(w.RecentTests) {
			t.Fatalf("%s: history lengths differ", name)
		}
		for i := range w.AllTests {
			wr, gr := w.AllTests[i], g.AllTests[i]
			if !wr.StartTime.Equal(gr.StartTime.Time) || !wr.EndTime.Equal(gr.EndTime.Time) {
				t.Fatalf("%s: session times differ", name)
			}
			wr.StartTime, wr.EndTime = gr.StartTime, gr.EndTime
			for j := range wr.Trials {
				if !wr.Trials[j].StartTime.Equal(gr.Trials[j].StartTime.Time) {
					t.Fatalf("%s: trial %d start differs", name, j)
				}
				wr.Trials[j].StartTime = gr.Trials[j].StartTime
			}
			if !reflect.DeepEqual(wr, gr) {
				t.Fatalf("%s: session differs:\nwant %+v\ngot  %+v", name, wr, gr)
			}
		}
		for i := range w.RecentTests {
			wr, gr := w.RecentTests[i], g.RecentTests[i]
			if !wr.Date.Equal(gr.Date.Time) || wr.Accuracy != gr.Accuracy || wr.TestType != gr.TestType || wr.Difficulty != gr.Difficulty {
				t.Fatalf("%s: recent test differs: %+v vs %+v", name, wr, gr)
			}
		}
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	for _, backend := range []string{BackendSQLite, BackendJSON, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "profiles."+backend)
			st, err := Open(backend, path)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			t.Cleanup(func() {
				_ = st.Close()
			})
			ctx := context.Background()

			empty, err := st.Load(ctx)
			if err != nil || empty == nil || len(empty) != 0 {
				t.Fatalf("expected empty non-nil mapping, got %v err=%v", empty, err)
			}

			want := sampleProfiles()
			if err := st.Save(ctx, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := st.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			assertProfilesEqual(t, want, got)

			delete(want, "bob")
			if err := st.Save(ctx, want); err != nil {
				t.Fatalf("second save: %v", err)
			}
			got, err = st.Load(ctx)
			if err != nil {
				t.Fatalf("second load: %v", err)
			}
			if _, ok := got["bob"]; ok || len(got) != 1 {
				t.Fatalf("save must replace the whole mapping, got %v", got.Names())
			}
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", "x"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestJSONFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stroop_user_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	profiles, err := NewJSONFile(path).Load(context.Background())
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if profiles == nil || len(profiles) != 0 {
		t.Fatalf("expected empty mapping, got %v", profiles)
	}
}

func TestSQLiteCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stroop.db")
	if err := os.WriteFile(path, bytes.Repeat([]byte("garbage!"), 512), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenSQLite(path); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

// Data written by the original desktop program: long test type titles,
// epoch-second trial starts and minute-precision summary dates.
const legacyJSON = `{
  "dana": {
    "total_tests": 1,
    "total_correct": 1,
    "total_trials": 1,
    "total_time": 1.2,
    "avg_accuracy": 100.0,
    "avg_response_time": 1.2,
    "best_accuracy": 100.0,
    "recent_tests": [
      {"date": "2024-05-01 14:30", "test_type": "Classic Stroop (Word vs Color)", "difficulty": "Easy", "accuracy": 100.0, "avg_time": 1.2, "trials": 1}
    ],
    "all_tests": [
      {
        "user": "dana",
        "test_type": "Classic Stroop (Word vs Color)",
        "difficulty": "Easy",
        "num_trials": 1,
        "start_time": "2024-05-01T14:29:58.123456",
        "trials": [
          {"trial_num": 1, "word": "RED", "color": "BLUE", "time_limit": 3000, "start_time": 1714573799.5, "response_time": 1.2, "user_answer": "BLUE", "correct": true}
        ],
        "current_trial": 1,
        "correct_answers": 1,
        "total_time": 1.2,
        "end_time": "2024-05-01T14:30:01.000001"
      }
    ]
  }
}`

func TestImportLegacyJSON(t *testing.T) {
	profiles, err := Import(strings.NewReader(legacyJSON), FormatJSON)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	dana := profiles["dana"]
	if dana.TotalTests != 1 || len(dana.AllTests) != 1 || len(dana.RecentTests) != 1 {
		t.Fatalf("unexpected profile %+v", dana)
	}
	rec := dana.AllTests[0]
	if rec.TestType != palette.Classic || rec.Difficulty != palette.Easy || !rec.Complete() {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Trials[0].StartTime == nil || rec.Trials[0].StartTime.Unix() != 1714573799 {
		t.Fatalf("unexpected trial start %+v", rec.Trials[0].StartTime)
	}
	if dana.RecentTests[0].Date.Minute() != 30 {
		t.Fatalf("unexpected summary date %v", dana.RecentTests[0].Date)
	}
}

func TestExportImportYAML(t *testing.T) {
	var buf bytes.Buffer
	want := sampleProfiles()
	if err := Export(&buf, want, FormatYAML); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), "test_type: Reverse") {
		t.Fatalf("expected readable enum names:\n%s", buf.String())
	}
	got, err := Import(&buf, FormatYAML)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	assertProfilesEqual(t, want, got)
}

func TestExportImportJSON(t *testing.T) {
	var buf bytes.Buffer
	want := sampleProfiles()
	if err := Export(&buf, want, "json"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), `"user_answer": null`) {
		t.Fatalf("expected null answer for timed out trial:\n%s", buf.String())
	}
	got, err := Import(&buf, FormatForPath("profiles.json"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	assertProfilesEqual(t, want, got)
}

func TestFormatAndMerge(t *testing.T) {
	if FormatForPath("x.YML") != FormatYAML || FormatForPath("x.txt") != FormatJSON {
		t.Fatalf("unexpected format detection")
	}
	if err := Export(&bytes.Buffer{}, nil, "xml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
	dst := model.Profiles{"alice": {TotalTests: 9}}
	replaced := Merge(dst, sampleProfiles())
	if len(replaced) != 1 || replaced[0] != "alice" {
		t.Fatalf("unexpected replaced %v", replaced)
	}
	if dst["alice"].TotalTests != 1 || len(dst) != 2 {
		t.Fatalf("unexpected merge result %+v", dst)
	}
}
