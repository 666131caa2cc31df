package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/stroop/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLite stores profiles in normalized tables.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			name TEXT PRIMARY KEY,
			total_tests INTEGER NOT NULL,
			total_correct INTEGER NOT NULL,
			total_trials INTEGER NOT NULL,
			total_time REAL NOT NULL,
			avg_accuracy REAL NOT NULL,
			avg_response_time REAL NOT NULL,
			best_accuracy REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			user TEXT NOT NULL,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			test_type TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			num_trials INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			current_trial INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL,
			total_time REAL NOT NULL,
			PRIMARY KEY (user, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS trials (
			user TEXT NOT NULL,
			session_seq INTEGER NOT NULL,
			trial_num INTEGER NOT NULL,
			word TEXT NOT NULL,
			color TEXT NOT NULL,
			time_limit INTEGER NOT NULL,
			start_time TEXT,
			response_time REAL,
			user_answer TEXT,
			correct INTEGER,
			PRIMARY KEY (user, session_seq, trial_num)
		);`,
		`CREATE TABLE IF NOT EXISTS recent_tests (
			user TEXT NOT NULL,
			seq INTEGER NOT NULL,
			date TEXT NOT NULL,
			test_type TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			accuracy REAL NOT NULL,
			avg_time REAL NOT NULL,
			trials INTEGER NOT NULL,
			PRIMARY KEY (user, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_id ON sessions(id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save implements ProfileStore. The mapping is rewritten in one transaction.
func (s *SQLite) Save(ctx context.Context, profiles model.Profiles) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, table := range []string{"trials", "recent_tests", "sessions", "users"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	w, err := prepareWriter(ctx, tx)
	if err != nil {
		return err
	}
	defer w.close()

	for name, p := range profiles {
		if err = w.writeProfile(ctx, name, p); err != nil {
			return fmt.Errorf("failed to save profile %q: %w", name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profiles: %w", err)
	}
	return nil
}

type profileWriter struct {
	user, session, trial, recent *sql.Stmt
}

func prepareWriter(ctx context.Context, tx *sql.Tx) (*profileWriter, error) {
	queries := []string{
		`INSERT INTO users (name, total_tests, total_correct, total_trials, total_time, avg_accuracy, avg_response_time, best_accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		`INSERT INTO sessions (user, seq, id, test_type, difficulty, num_trials, start_time, end_time, current_trial, correct_answers, total_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		`INSERT INTO trials (user, session_seq, trial_num, word, color, time_limit, start_time, response_time, user_answer, correct)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		`INSERT INTO recent_tests (user, seq, date, test_type, difficulty, accuracy, avg_time, trials)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	}
	stmts := make([]*sql.Stmt, 0, len(queries))
	for _, q := range queries {
		stmt, err := tx.PrepareContext(ctx, q)
		if err != nil {
			for _, prepared := range stmts {
				// Best-effort statement close.
				_ = prepared.Close()
			}
			return nil, fmt.Errorf("failed to prepare statement: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	return &profileWriter{user: stmts[0], session: stmts[1], trial: stmts[2], recent: stmts[3]}, nil
}

func (w *profileWriter) close() {
	for _, stmt := range []*sql.Stmt{w.user, w.session, w.trial, w.recent} {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}
}

func (w *profileWriter) writeProfile(ctx context.Context, name string, p model.UserProfile) error {
	if _, err := w.user.ExecContext(ctx, name, p.TotalTests, p.TotalCorrect, p.TotalTrials, p.TotalTime,
		p.AvgAccuracy, p.AvgResponseTime, p.BestAccuracy); err != nil {
		return err
	}
	for seq, rec := range p.AllTests {
		if _, err := w.session.ExecContext(ctx, name, seq, rec.ID, rec.TestType.String(), rec.Difficulty.String(),
			rec.NumTrials, formatTime(rec.StartTime), formatTime(rec.EndTime), rec.CurrentTrial,
			rec.CorrectAnswers, rec.TotalTime); err != nil {
			return err
		}
		for _, t := range rec.Trials {
			var start sql.NullString
			if t.StartTime != nil {
				start = sql.NullString{String: formatTime(*t.StartTime), Valid: true}
			}
			if _, err := w.trial.ExecContext(ctx, name, seq, t.Number, t.Word, t.Color, t.TimeLimitMs,
				start, nullFloat(t.ResponseTime), nullString(t.UserAnswer), nullBool(t.Correct)); err != nil {
				return err
			}
		}
	}
	for seq, r := range p.RecentTests {
		if _, err := w.recent.ExecContext(ctx, name, seq, formatTime(r.Date), r.TestType.String(),
			r.Difficulty.String(), r.Accuracy, r.AvgTime, r.Trials); err != nil {
			return err
		}
	}
	return nil
}

// Load implements ProfileStore.
func (s *SQLite) Load(ctx context.Context) (model.Profiles, error) {
	profiles, err := s.load(ctx)
	if err != nil {
		return emptyProfiles(), err
	}
	return profiles, nil
}

func (s *SQLite) load(ctx context.Context) (model.Profiles, error) {
	profiles := emptyProfiles()
	err := s.query(ctx, `SELECT name, total_tests, total_correct, total_trials, total_time, avg_accuracy, avg_response_time, best_accuracy
		FROM users`, func(rows *sql.Rows) error {
		var name string
		var p model.UserProfile
		if err := rows.Scan(&name, &p.TotalTests, &p.TotalCorrect, &p.TotalTrials, &p.TotalTime,
			&p.AvgAccuracy, &p.AvgResponseTime, &p.BestAccuracy); err != nil {
			return err
		}
		p.RecentTests = []model.SessionSummary{}
		p.AllTests = []model.SessionRecord{}
		profiles[name] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range sessions.order {
		p, ok := profiles[key.user]
		if !ok {
			continue
		}
		p.AllTests = append(p.AllTests, *sessions.byKey[key])
		profiles[key.user] = p
	}

	err = s.query(ctx, `SELECT user, date, test_type, difficulty, accuracy, avg_time, trials
		FROM recent_tests ORDER BY user, seq`, func(rows *sql.Rows) error {
		var user, date, testType, difficulty string
		var r model.SessionSummary
		if err := rows.Scan(&user, &date, &testType, &difficulty, &r.Accuracy, &r.AvgTime, &r.Trials); err != nil {
			return err
		}
		if err := r.Date.UnmarshalText([]byte(date)); err != nil {
			return err
		}
		if err := r.TestType.UnmarshalText([]byte(testType)); err != nil {
			return err
		}
		if err := r.Difficulty.UnmarshalText([]byte(difficulty)); err != nil {
			return err
		}
		if p, ok := profiles[user]; ok {
			p.RecentTests = append(p.RecentTests, r)
			profiles[user] = p
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent tests: %w", err)
	}
	return profiles, nil
}

type sessionKey struct {
	user string
	seq  int
}

type sessionSet struct {
	order []sessionKey
	byKey map[sessionKey]*model.SessionRecord
}

func (s *SQLite) loadSessions(ctx context.Context) (sessionSet, error) {
	set := sessionSet{byKey: map[sessionKey]*model.SessionRecord{}}
	err := s.query(ctx, `SELECT user, seq, id, test_type, difficulty, num_trials, start_time, end_time, current_trial, correct_answers, total_time
		FROM sessions ORDER BY user, seq`, func(rows *sql.Rows) error {
		var key sessionKey
		var testType, difficulty, start, end string
		rec := &model.SessionRecord{Trials: []model.Trial{}}
		if err := rows.Scan(&key.user, &key.seq, &rec.ID, &testType, &difficulty, &rec.NumTrials, &start, &end,
			&rec.CurrentTrial, &rec.CorrectAnswers, &rec.TotalTime); err != nil {
			return err
		}
		rec.User = key.user
		if err := rec.TestType.UnmarshalText([]byte(testType)); err != nil {
			return err
		}
		if err := rec.Difficulty.UnmarshalText([]byte(difficulty)); err != nil {
			return err
		}
		if err := rec.StartTime.UnmarshalText([]byte(start)); err != nil {
			return err
		}
		if err := rec.EndTime.UnmarshalText([]byte(end)); err != nil {
			return err
		}
		set.order = append(set.order, key)
		set.byKey[key] = rec
		return nil
	})
	if err != nil {
		return set, fmt.Errorf("failed to load sessions: %w", err)
	}

	err = s.query(ctx, `SELECT user, session_seq, trial_num, word, color, time_limit, start_time, response_time, user_answer, correct
		FROM trials ORDER BY user, session_seq, trial_num`, func(rows *sql.Rows) error {
		var key sessionKey
		var t model.Trial
		var start, answer sql.NullString
		var rt sql.NullFloat64
		var correct sql.NullBool
		if err := rows.Scan(&key.user, &key.seq, &t.Number, &t.Word, &t.Color, &t.TimeLimitMs,
			&start, &rt, &answer, &correct); err != nil {
			return err
		}
		if start.Valid {
			var ts model.Timestamp
			if err := ts.UnmarshalText([]byte(start.String)); err != nil {
				return err
			}
			t.StartTime = &ts
		}
		if rt.Valid {
			t.ResponseTime = &rt.Float64
		}
		if answer.Valid {
			t.UserAnswer = &answer.String
		}
		if correct.Valid {
			t.Correct = &correct.Bool
		}
		if rec, ok := set.byKey[key]; ok {
			rec.Trials = append(rec.Trials, t)
		}
		return nil
	})
	if err != nil {
		return set, fmt.Errorf("failed to load trials: %w", err)
	}
	return set, nil
}

func (s *SQLite) query(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func formatTime(ts model.Timestamp) string {
	text, err := ts.MarshalText()
	if err != nil {
		return ""
	}
	return string(text)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
