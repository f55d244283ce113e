// Package server wires the engine, store, and MCP tools together.
//
// This is the composition root: it loads the catalog, opens the store,
// creates concrete implementations, and injects them into the tool handlers.
// No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/config"
	"github.com/recertlabs/recert/internal/debounce"
	"github.com/recertlabs/recert/internal/store"
	"github.com/recertlabs/recert/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function flushes pending work and closes the store's
// database connection; call it on shutdown (typically via defer). It is
// always non-nil.
func New(cfg config.Config, log *zap.SugaredLogger) (*server.MCPServer, func(), error) {
	noop := func() {}

	// --- Load the standard version ---

	var cat *catalog.Catalog
	var err error
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, noop, fmt.Errorf("loading catalog: %w", err)
		}
	} else {
		cat = catalog.Default()
	}
	log.Infow("catalog loaded", "version", cat.Version(), "questions", len(cat.Questions()))

	// --- Open persistence ---

	storeCfg := store.DefaultConfig()
	if cfg.DataDir != "" {
		storeCfg.DataDir = cfg.DataDir
	}
	st, err := store.New(storeCfg)
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}

	engine := assessment.NewEngine(cat)

	// Debounced score logging: bursts of answer edits coalesce into one
	// aggregate recompute for the operator log. Recomputation is idempotent,
	// so the window is purely a performance knob.
	pending := make(chan string, 64)
	scoreLog := debounce.New(cfg.DebounceWindow, func() {
		for {
			select {
			case id := <-pending:
				a, err := st.Load(id)
				if err != nil {
					continue
				}
				res, err := engine.Aggregate(a)
				if err != nil {
					continue
				}
				log.Infow("assessment rescored",
					"assessment", id,
					"overall", fmt.Sprintf("%.1f%%", res.OverallPercentage),
					"readiness", res.Readiness,
					"critical_gaps", res.CriticalGapCount)
			default:
				return
			}
		}
	})
	onSaved := func(assessmentID string) {
		select {
		case pending <- assessmentID:
		default:
		}
		scoreLog.Trigger()
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"recert",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions(cat.Version())),
	)

	// --- Register tools ---

	createTool := tools.NewAssessmentCreateTool(st, engine)
	s.AddTool(createTool.Definition(), createTool.Handle)

	intakeTool := tools.NewAssessmentIntakeTool(st, engine)
	s.AddTool(intakeTool.Definition(), intakeTool.Handle)

	answerTool := tools.NewAnswerRecordTool(st, engine, onSaved)
	s.AddTool(answerTool.Definition(), answerTool.Handle)

	scoreTool := tools.NewAssessmentScoreTool(st, engine)
	s.AddTool(scoreTool.Definition(), scoreTool.Handle)

	transitionTool := tools.NewAssessmentTransitionTool(st, engine)
	s.AddTool(transitionTool.Definition(), transitionTool.Handle)

	statusTool := tools.NewAssessmentStatusTool(st)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	coverageTool := tools.NewCatalogCoverageTool(cat)
	s.AddTool(coverageTool.Definition(), coverageTool.Handle)

	cleanup := func() {
		scoreLog.Flush()
		if err := st.Close(); err != nil {
			log.Warnw("closing store", "error", err)
		}
	}
	return s, cleanup, nil
}

func serverInstructions(catalogVersion string) string {
	return fmt.Sprintf(
		"recert exposes a compliance assessment engine for standard version %s. "+
			"Start with assessment_create (intake facts decide which requirements "+
			"apply), record answers with answer_record, watch the score with "+
			"assessment_score, and move through the lifecycle with "+
			"assessment_transition. Intake edits mid-assessment reselect the "+
			"active question set; answers are never deleted, only orphaned.",
		catalogVersion,
	)
}
