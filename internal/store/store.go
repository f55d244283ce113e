// Package store persists assessments in SQLite.
//
// The engine itself is pure; this is the collaborating persistence layer.
// It serializes writes per assessment with an in-process advisory lock so
// near-simultaneous submissions cannot interleave a reselect with the answer
// map it read. Answer rows are keyed (assessment_id, question_id), which
// gives last-writer-wins per question.
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
	"github.com/recertlabs/recert/internal/scoring"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound reports a missing assessment id.
var ErrNotFound = errors.New("assessment not found")

// Config holds store configuration.
type Config struct {
	// DataDir holds recert.db. Created if missing.
	DataDir string
}

// DefaultConfig stores under ~/.recert.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".recert")}
}

// Store is the SQLite-backed assessment store.
type Store struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New opens (or creates) the database, applies pragmas, and migrates the
// schema.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "store: create data dir")
	}

	dbPath := filepath.Join(cfg.DataDir, "recert.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "store: open database")
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, errors.Wrapf(err, "store: pragma %q", p)
		}
	}

	s := &Store{db: db, locks: make(map[string]*sync.Mutex)}
	if err := s.migrate(); err != nil {
		return nil, errors.Wrap(err, "store: migration")
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS assessments (
			id              TEXT PRIMARY KEY,
			facility_name   TEXT NOT NULL,
			catalog_version TEXT NOT NULL,
			state           TEXT NOT NULL,
			intake_json     TEXT NOT NULL,
			active_ids_json TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS answers (
			assessment_id  TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
			question_id    TEXT NOT NULL,
			value          TEXT NOT NULL,
			notes          TEXT NOT NULL DEFAULT '',
			evidence_json  TEXT NOT NULL DEFAULT '[]',
			compliance     TEXT NOT NULL,
			score          REAL NOT NULL,
			max_score      REAL NOT NULL,
			orphaned       INTEGER NOT NULL DEFAULT 0,
			answered_at    TEXT NOT NULL,
			updated_at     TEXT NOT NULL,
			PRIMARY KEY (assessment_id, question_id)
		);

		CREATE TABLE IF NOT EXISTS review_flags (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
			kind          TEXT NOT NULL,
			question_id   TEXT NOT NULL DEFAULT '',
			message       TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_answers_assessment ON answers(assessment_id);
		CREATE INDEX IF NOT EXISTS idx_flags_assessment ON review_flags(assessment_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// lockFor returns the advisory lock for one assessment id.
func (s *Store) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// WithLock runs fn while holding the per-assessment write lock. Mutations
// (load-modify-save sequences) go through here so reselect runs atomically
// with the answer map it read.
func (s *Store) WithLock(assessmentID string, fn func() error) error {
	l := s.lockFor(assessmentID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// Save upserts the full assessment record: row, answers, and review flags,
// in one transaction.
func (s *Store) Save(a *assessment.Assessment) error {
	intakeJSON, err := json.Marshal(a.Intake)
	if err != nil {
		return errors.Wrap(err, "store: marshal intake")
	}
	activeJSON, err := json.Marshal(a.ActiveIDs)
	if err != nil {
		return errors.Wrap(err, "store: marshal active set")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "store: begin")
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO assessments (id, facility_name, catalog_version, state, intake_json, active_ids_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			facility_name = excluded.facility_name,
			state = excluded.state,
			intake_json = excluded.intake_json,
			active_ids_json = excluded.active_ids_json,
			updated_at = excluded.updated_at`,
		a.ID, a.FacilityName, a.CatalogVersion, string(a.State),
		string(intakeJSON), string(activeJSON), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "store: upsert assessment")
	}

	// Answers and flags are small per assessment; replace wholesale.
	if _, err := tx.Exec(`DELETE FROM answers WHERE assessment_id = ?`, a.ID); err != nil {
		return errors.Wrap(err, "store: clear answers")
	}
	for _, ans := range a.Answers {
		evidenceJSON, err := json.Marshal(ans.EvidenceRefs)
		if err != nil {
			return errors.Wrap(err, "store: marshal evidence")
		}
		_, err = tx.Exec(`
			INSERT INTO answers (assessment_id, question_id, value, notes, evidence_json, compliance, score, max_score, orphaned, answered_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, ans.QuestionID, string(ans.Value), ans.Notes, string(evidenceJSON),
			string(ans.Compliance), ans.Score, ans.MaxScore, boolToInt(ans.Orphaned),
			ans.AnsweredAt, ans.UpdatedAt)
		if err != nil {
			return errors.Wrapf(err, "store: insert answer %s", ans.QuestionID)
		}
	}

	if _, err := tx.Exec(`DELETE FROM review_flags WHERE assessment_id = ?`, a.ID); err != nil {
		return errors.Wrap(err, "store: clear flags")
	}
	for _, f := range a.ReviewFlags {
		_, err = tx.Exec(`
			INSERT INTO review_flags (assessment_id, kind, question_id, message, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			a.ID, string(f.Kind), f.QuestionID, f.Message, f.CreatedAt)
		if err != nil {
			return errors.Wrap(err, "store: insert flag")
		}
	}

	return errors.Wrap(tx.Commit(), "store: commit")
}

// Load reads one assessment with its answers and flags.
func (s *Store) Load(id string) (*assessment.Assessment, error) {
	var a assessment.Assessment
	var state, intakeJSON, activeJSON string
	err := s.db.QueryRow(`
		SELECT id, facility_name, catalog_version, state, intake_json, active_ids_json, created_at, updated_at
		FROM assessments WHERE id = ?`, id).
		Scan(&a.ID, &a.FacilityName, &a.CatalogVersion, &state, &intakeJSON, &activeJSON, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "store: load assessment")
	}

	a.State = assessment.State(state)
	var fact intake.Fact
	if err := json.Unmarshal([]byte(intakeJSON), &fact); err != nil {
		return nil, errors.Wrap(err, "store: unmarshal intake")
	}
	a.Intake = fact
	if err := json.Unmarshal([]byte(activeJSON), &a.ActiveIDs); err != nil {
		return nil, errors.Wrap(err, "store: unmarshal active set")
	}

	a.Answers = make(map[string]*assessment.Answer)
	rows, err := s.db.Query(`
		SELECT question_id, value, notes, evidence_json, compliance, score, max_score, orphaned, answered_at, updated_at
		FROM answers WHERE assessment_id = ?`, id)
	if err != nil {
		return nil, errors.Wrap(err, "store: load answers")
	}
	defer rows.Close()
	for rows.Next() {
		var ans assessment.Answer
		var value, compliance, evidenceJSON string
		var orphaned int
		if err := rows.Scan(&ans.QuestionID, &value, &ans.Notes, &evidenceJSON, &compliance,
			&ans.Score, &ans.MaxScore, &orphaned, &ans.AnsweredAt, &ans.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "store: scan answer")
		}
		ans.Value = catalog.AnswerValue(value)
		ans.Compliance = scoring.ComplianceLevel(compliance)
		ans.Orphaned = orphaned != 0
		if err := json.Unmarshal([]byte(evidenceJSON), &ans.EvidenceRefs); err != nil {
			return nil, errors.Wrap(err, "store: unmarshal evidence")
		}
		a.Answers[ans.QuestionID] = &ans
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "store: iterate answers")
	}

	frows, err := s.db.Query(`
		SELECT kind, question_id, message, created_at
		FROM review_flags WHERE assessment_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, errors.Wrap(err, "store: load flags")
	}
	defer frows.Close()
	for frows.Next() {
		var f assessment.ReviewFlag
		var kind string
		if err := frows.Scan(&kind, &f.QuestionID, &f.Message, &f.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "store: scan flag")
		}
		f.Kind = assessment.FlagKind(kind)
		a.ReviewFlags = append(a.ReviewFlags, f)
	}
	if err := frows.Err(); err != nil {
		return nil, errors.Wrap(err, "store: iterate flags")
	}

	return &a, nil
}

// Summary is a compact listing view of one assessment.
type Summary struct {
	ID             string `json:"id"`
	FacilityName   string `json:"facility_name"`
	CatalogVersion string `json:"catalog_version"`
	State          string `json:"state"`
	AnswerCount    int    `json:"answer_count"`
	UpdatedAt      string `json:"updated_at"`
}

// List returns summaries of all assessments, most recently updated first.
func (s *Store) List() ([]Summary, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.facility_name, a.catalog_version, a.state, a.updated_at,
			(SELECT COUNT(*) FROM answers ans WHERE ans.assessment_id = a.id)
		FROM assessments a ORDER BY a.updated_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "store: list assessments")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.FacilityName, &sum.CatalogVersion, &sum.State, &sum.UpdatedAt, &sum.AnswerCount); err != nil {
			return nil, errors.Wrap(err, "store: scan summary")
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
