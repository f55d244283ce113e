package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testAssessment(t *testing.T, id string) *assessment.Assessment {
	t.Helper()
	e := assessment.NewEngine(catalog.Default())
	a, err := e.Create("Acme Recycling", intake.Fact{DataBearingDevices: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	a.ID = id
	if _, err := e.RecordAnswer(a, "CR1-01", "yes", "iso cert on file", []string{"doc://cert.pdf"}); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if _, err := e.RecordAnswer(a, "CR7-01", "partial", "", nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	return a
}

// --- Round trip ---

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := testStore(t)
	a := testAssessment(t, "rt-1")
	a.Flag(assessment.FlagManualReview, "", "spot check")

	if err := s.Save(a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := s.Load("rt-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.FacilityName != a.FacilityName || got.State != a.State || got.CatalogVersion != a.CatalogVersion {
		t.Errorf("header mismatch: got %+v", got)
	}
	if !got.Intake.DataBearingDevices {
		t.Error("intake flag lost in round trip")
	}
	if len(got.ActiveIDs) != len(a.ActiveIDs) {
		t.Errorf("active set %d ids, want %d", len(got.ActiveIDs), len(a.ActiveIDs))
	}
	if len(got.Answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(got.Answers))
	}
	ans := got.Answers["CR1-01"]
	if ans == nil || ans.Value != catalog.ValueYes || ans.Score != 3 || ans.Notes != "iso cert on file" {
		t.Errorf("CR1-01 answer mismatch: %+v", ans)
	}
	if len(ans.EvidenceRefs) != 1 || ans.EvidenceRefs[0] != "doc://cert.pdf" {
		t.Errorf("evidence refs = %v, want [doc://cert.pdf]", ans.EvidenceRefs)
	}
	if got.Answers["CR7-01"].Score != got.Answers["CR7-01"].MaxScore/2 {
		t.Error("partial answer score lost precision in round trip")
	}
	if len(got.ReviewFlags) != 1 || got.ReviewFlags[0].Kind != assessment.FlagManualReview {
		t.Errorf("review flags = %+v, want the manual_review flag", got.ReviewFlags)
	}
}

func TestSave_UpsertReplacesAnswers(t *testing.T) {
	s := testStore(t)
	a := testAssessment(t, "up-1")
	if err := s.Save(a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	delete(a.Answers, "CR7-01")
	a.State = assessment.StateUnderReview
	if err := s.Save(a); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := s.Load("up-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Answers) != 1 {
		t.Errorf("answers = %d, want 1 after wholesale replace", len(got.Answers))
	}
	if got.State != assessment.StateUnderReview {
		t.Errorf("State = %s, want under_review", got.State)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Load("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// --- Listing ---

func TestList(t *testing.T) {
	s := testStore(t)
	a := testAssessment(t, "l-1")
	b := testAssessment(t, "l-2")
	b.UpdatedAt = "2026-12-31T00:00:00Z"
	for _, rec := range []*assessment.Assessment{a, b} {
		if err := s.Save(rec); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d, want 2", len(got))
	}
	if got[0].ID != "l-2" {
		t.Errorf("first summary = %s, want most recently updated l-2", got[0].ID)
	}
	if got[0].AnswerCount != 2 {
		t.Errorf("AnswerCount = %d, want 2", got[0].AnswerCount)
	}
}

// --- Locking ---

func TestWithLock_SerializesPerAssessment(t *testing.T) {
	s := testStore(t)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithLock("same-id", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Errorf("counter = %d, want 50 with serialized sections", counter)
	}
}
