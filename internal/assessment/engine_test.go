package assessment

import (
	"errors"
	"testing"
	"time"

	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
	"github.com/recertlabs/recert/internal/scoring"
)

func init() {
	timeNow = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
}

func testEngine() *Engine {
	return NewEngine(catalog.Default())
}

// --- Create ---

func TestCreate(t *testing.T) {
	e := testEngine()
	a, err := e.Create("Acme Recycling", intake.Fact{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.ID == "" {
		t.Error("ID should be assigned")
	}
	if a.State != StateDraft {
		t.Errorf("State = %s, want draft", a.State)
	}
	if a.CatalogVersion != catalog.Default().Version() {
		t.Errorf("CatalogVersion = %q, want catalog version", a.CatalogVersion)
	}
	if !a.IsActive("CR1-01") {
		t.Error("core question CR1-01 should be active")
	}
	if a.IsActive("APP-B-01") {
		t.Error("appendix question should not be active for empty intake")
	}
	if len(a.ReviewFlags) != 0 {
		t.Errorf("ReviewFlags = %v, want none", a.ReviewFlags)
	}
}

func TestCreate_RequiresFacilityName(t *testing.T) {
	e := testEngine()
	if _, err := e.Create("  ", intake.Fact{}); err == nil {
		t.Error("expected error for blank facility name")
	}
}

func TestCreate_RejectsInvalidIntake(t *testing.T) {
	e := testEngine()
	fact := intake.Fact{FocusMaterials: []intake.FocusMaterial{"kryptonite"}}
	if _, err := e.Create("Acme", fact); err == nil {
		t.Error("expected error for unknown focus material")
	}
}

func TestCreate_FlagsUnmappedFocusMaterials(t *testing.T) {
	e := testEngine()
	fact := intake.Fact{FocusMaterials: []intake.FocusMaterial{intake.MaterialTonerCartridge}}
	a, err := e.Create("Acme", fact)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(a.ReviewFlags) != 1 || a.ReviewFlags[0].Kind != FlagManualReview {
		t.Errorf("ReviewFlags = %v, want one manual_review flag", a.ReviewFlags)
	}
}

// --- RecordAnswer ---

func TestRecordAnswer_FirstAnswerStartsProgress(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})

	ans, err := e.RecordAnswer(a, "CR1-01", "yes", "certified to ISO 14001", []string{"doc://cert.pdf"})
	if err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if a.State != StateInProgress {
		t.Errorf("State = %s, want in_progress after first answer", a.State)
	}
	if ans.Compliance != scoring.Compliant || ans.Score != 3 || ans.MaxScore != 3 {
		t.Errorf("answer = %+v, want compliant 3/3", ans)
	}
}

func TestRecordAnswer_InvalidValue(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})

	_, err := e.RecordAnswer(a, "CR1-01", "probably", "", nil)
	var invalid *scoring.InvalidAnswerValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidAnswerValueError", err)
	}
}

func TestRecordAnswer_UnknownQuestion(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})
	if _, err := e.RecordAnswer(a, "CR99-01", "yes", "", nil); err == nil {
		t.Error("expected error for unknown question id")
	}
}

func TestRecordAnswer_InactiveQuestionRejected(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})
	if _, err := e.RecordAnswer(a, "APP-B-01", "yes", "", nil); err == nil {
		t.Error("expected error answering an out-of-scope question")
	}
}

func TestRecordAnswer_ActivatesDependents(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{DataBearingDevices: true})

	if a.IsActive("CR7-03") {
		t.Fatal("CR7-03 should start inactive")
	}
	if _, err := e.RecordAnswer(a, "CR7-01", "yes", "", nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if !a.IsActive("CR7-03") {
		t.Error("CR7-03 should activate after CR7-01 is yes")
	}
}

func TestRecordAnswer_CompletedRejected(t *testing.T) {
	e := testEngine()
	a := completedAssessment(t, e)
	if _, err := e.RecordAnswer(a, "CR1-01", "no", "", nil); err == nil {
		t.Error("expected error recording an answer on a completed assessment")
	}
}

// --- UpdateIntake / reselection ---

func TestUpdateIntake_FlipActivatesDataSecurity(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})
	if _, err := e.RecordAnswer(a, "CR1-01", "yes", "", nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	res, err := e.UpdateIntake(a, intake.Fact{DataBearingDevices: true})
	if err != nil {
		t.Fatalf("UpdateIntake failed: %v", err)
	}
	for _, id := range []string{"CR7-01", "CR7-02", "APP-B-01"} {
		if !a.IsActive(id) {
			t.Errorf("%s should be active after the flip", id)
		}
	}
	if len(res.NewlyOrphaned) != 0 {
		t.Errorf("NewlyOrphaned = %v, want none", res.NewlyOrphaned)
	}
	// The recorded answer is untouched by reselection.
	if a.Answers["CR1-01"].Score != 3 {
		t.Errorf("CR1-01 score = %v, want 3", a.Answers["CR1-01"].Score)
	}
}

func TestUpdateIntake_OrphansThenRestores(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{DataBearingDevices: true})
	if _, err := e.RecordAnswer(a, "APP-B-01", "yes", "", nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	res, err := e.UpdateIntake(a, intake.Fact{})
	if err != nil {
		t.Fatalf("UpdateIntake failed: %v", err)
	}
	if len(res.NewlyOrphaned) != 1 || res.NewlyOrphaned[0] != "APP-B-01" {
		t.Fatalf("NewlyOrphaned = %v, want [APP-B-01]", res.NewlyOrphaned)
	}
	ans := a.Answers["APP-B-01"]
	if ans == nil || !ans.Orphaned {
		t.Fatal("answer should be retained and marked orphaned")
	}
	if flagCount(a, FlagOrphanedAnswer) != 1 {
		t.Errorf("orphaned_answer flags = %d, want 1", flagCount(a, FlagOrphanedAnswer))
	}

	res, err = e.UpdateIntake(a, intake.Fact{DataBearingDevices: true})
	if err != nil {
		t.Fatalf("UpdateIntake failed: %v", err)
	}
	if len(res.NewlyRestored) != 1 || res.NewlyRestored[0] != "APP-B-01" {
		t.Fatalf("NewlyRestored = %v, want [APP-B-01]", res.NewlyRestored)
	}
	if a.Answers["APP-B-01"].Orphaned {
		t.Error("restored answer should no longer be orphaned")
	}
}

func TestUpdateIntake_FrozenFlagsWithoutReselecting(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{DataBearingDevices: true})
	if _, err := e.RecordAnswer(a, "APP-B-01", "yes", "", nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if err := e.Transition(a, StateUnderReview, false, ""); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	if _, err := e.UpdateIntake(a, intake.Fact{}); err != nil {
		t.Fatalf("UpdateIntake failed: %v", err)
	}
	if !a.IsActive("APP-B-01") {
		t.Error("active set must stay frozen under review")
	}
	if a.Answers["APP-B-01"].Orphaned {
		t.Error("no orphaning while frozen")
	}
	if flagCount(a, FlagIntakeChanged) != 1 {
		t.Errorf("intake_changed flags = %d, want 1", flagCount(a, FlagIntakeChanged))
	}

	if _, err := e.Reselect(a); err == nil {
		t.Error("Reselect should refuse while frozen")
	}

	// Reopening thaws the set, and the stored intake edit takes effect.
	if err := e.Transition(a, StateInProgress, false, ""); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if a.IsActive("APP-B-01") {
		t.Error("reopen should apply the pending intake change")
	}
	if !a.Answers["APP-B-01"].Orphaned {
		t.Error("answer should be orphaned after reopen applies the change")
	}
}

// --- Transitions and completion guard ---

func TestTransition_CompletionBlockedByCriticalGap(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})
	if _, err := e.RecordAnswer(a, "CR2-01", "no", "", nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if err := e.Transition(a, StateUnderReview, false, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	err := e.Transition(a, StateCompleted, false, "")
	var blocked *CompletionBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("err = %v, want CompletionBlockedError", err)
	}
	if blocked.CriticalGaps == 0 {
		t.Error("CriticalGaps should be non-zero")
	}
	if a.State != StateUnderReview {
		t.Errorf("State = %s, want unchanged under_review", a.State)
	}

	if err := e.Transition(a, StateCompleted, true, "  "); err == nil {
		t.Error("override without justification should fail")
	}

	if err := e.Transition(a, StateCompleted, true, "risk accepted by lead auditor"); err != nil {
		t.Fatalf("override failed: %v", err)
	}
	if a.State != StateCompleted {
		t.Errorf("State = %s, want completed", a.State)
	}
	if flagCount(a, FlagCompletionOverride) != 1 {
		t.Errorf("completion_override flags = %d, want 1", flagCount(a, FlagCompletionOverride))
	}
}

func TestTransition_CleanCompletion(t *testing.T) {
	e := testEngine()
	a := completedAssessment(t, e)
	if a.State != StateCompleted {
		t.Errorf("State = %s, want completed", a.State)
	}
	if err := e.Transition(a, StateInProgress, false, ""); err != nil {
		t.Errorf("reopen from completed failed: %v", err)
	}
}

func TestTransition_InvalidEdge(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})
	err := e.Transition(a, StateCompleted, false, "")
	var invalid *InvalidStateTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidStateTransitionError", err)
	}
}

// --- Aggregation through the engine ---

func TestAggregate_UnansweredRequiredCriticalOnlyUnderReview(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})
	if _, err := e.RecordAnswer(a, "CR1-01", "yes", "", nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	res, err := e.Aggregate(a)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if res.CriticalGapCount != 0 {
		t.Errorf("in progress: critical gaps = %d, want 0", res.CriticalGapCount)
	}

	if err := e.Transition(a, StateUnderReview, false, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	res, err = e.Aggregate(a)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if res.CriticalGapCount == 0 {
		t.Error("under review: unanswered required questions should be critical gaps")
	}
}

func TestAggregate_FullYesReachesHundredPercent(t *testing.T) {
	e := testEngine()
	a, _ := e.Create("Acme", intake.Fact{})

	// Answer every active non-screener question yes; the screeners keep their
	// intake-derived "no" and must not drag the score or appear as gaps.
	for _, id := range append([]string(nil), a.ActiveIDs...) {
		q, _ := e.Catalog().Question(id)
		if q.IntakeFlag != "" {
			continue
		}
		if _, err := e.RecordAnswer(a, id, "yes", "", nil); err != nil {
			t.Fatalf("answering %s: %v", id, err)
		}
	}

	res, err := e.Aggregate(a)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if res.OverallPercentage != 100 {
		t.Errorf("overall = %v, want 100", res.OverallPercentage)
	}
	if len(res.Gaps) != 0 {
		t.Errorf("gaps = %v, want none", res.Gaps)
	}
}

// --- helpers ---

// answerAllYes records yes on every active question, looping until the
// answer-driven reselection stops activating new ones.
func answerAllYes(t *testing.T, e *Engine, a *Assessment) {
	t.Helper()
	for {
		var pending []string
		for _, id := range a.ActiveIDs {
			if _, done := a.Answers[id]; !done {
				pending = append(pending, id)
			}
		}
		if len(pending) == 0 {
			return
		}
		for _, id := range pending {
			if _, err := e.RecordAnswer(a, id, "yes", "", []string{"doc://evidence"}); err != nil {
				t.Fatalf("answering %s: %v", id, err)
			}
		}
	}
}

func completedAssessment(t *testing.T, e *Engine) *Assessment {
	t.Helper()
	a, err := e.Create("Acme", intake.Fact{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	answerAllYes(t, e, a)
	if err := e.Transition(a, StateUnderReview, false, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := e.Transition(a, StateCompleted, false, ""); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	return a
}

func flagCount(a *Assessment, kind FlagKind) int {
	n := 0
	for _, f := range a.ReviewFlags {
		if f.Kind == kind {
			n++
		}
	}
	return n
}
