package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"samsara/internal/collab"
	"samsara/internal/config"
	"samsara/internal/embedding"
	"samsara/internal/store"
	"samsara/pkg/guardians"
	"samsara/pkg/hybrid"
	"samsara/pkg/hybrid/graphwalk"
	"samsara/pkg/recall"
	"samsara/pkg/turiya"
)

const demoSystemPrompt = "You are an engineering assistant with access to project memory, code search, and a graph of prior decisions."

const (
	demoProject   = "samsara-demo"
	demoSessionID = "demo-session-1"
)

// runDemo constructs every subsystem from the workspace config and the
// SQLite-backed store, then replays demoTranscript through Classify,
// GatedSearch, the guardian controller, and RecordOutcome in turn order.
func runDemo(ctx context.Context, ws string) error {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(ws, "samsara.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Store.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(ws, dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var embedder collab.EmbeddingService
	if cfg.Embedding.Provider == "genai" && cfg.Embedding.GenAIAPIKey != "" {
		ge, err := embedding.NewGenAIEngine(cfg.Embedding.GenAIAPIKey, cfg.Embedding.GenAIModel, "", cfg.Embedding.Dimensions)
		if err != nil {
			logger.Warn("genai embedder unavailable, falling back to hash embedder", zap.Error(err))
		} else {
			embedder = ge
			defer ge.Close()
		}
	}
	recallStore := recall.NewStore(st.Vectors(), embedder)

	bm25 := newBM25Backend()
	graph := graphwalk.New()
	vector := newVectorBackend(recallStore)

	learner := hybrid.NewWeightLearner()
	if state, ok, err := st.Bandit().LoadWeightLearnerState(ctx, demoProject); err != nil {
		return fmt.Errorf("load weight learner state: %w", err)
	} else if ok {
		learner.Deserialize(state)
		logger.Info("restored weight learner state", zap.Uint64("total_feedback", state.TotalFeedback))
	}

	engineCfg := hybrid.DefaultConfig()
	engineCfg.Fuse = cfg.FuseConfig()
	engineCfg.BackendTimeout = cfg.GetBackendTimeout()
	engineCfg.Backends = map[hybrid.Source]hybrid.Backend{
		hybrid.SourceBM25:     bm25,
		hybrid.SourceVector:   vector,
		hybrid.SourceGraphRAG: graph,
	}
	engine := hybrid.NewEngine(engineCfg, learner, buildMetaLookup(st.Vectors()))

	controller := guardians.NewController(guardians.ControllerConfig{
		Rakshaka: cfg.RakshakaConfig(),
		Gati:     cfg.GatiConfig(),
		Satya:    cfg.SatyaConfig(),
	})
	controller.OnFinding(func(e guardians.Event) {
		f := e.Finding
		logger.Warn("guardian finding",
			zap.String("domain", string(f.Domain)),
			zap.String("severity", string(f.Severity)),
			zap.String("title", f.Title),
			zap.Float64("confidence", f.Confidence),
		)
	})

	router := turiya.NewRouter(cfg.TuriyaConfig())
	if state, ok, err := st.Bandit().LoadRouterState(ctx, demoProject); err != nil {
		return fmt.Errorf("load router state: %w", err)
	} else if ok {
		router = turiya.Deserialize(cfg.TuriyaConfig(), state)
		logger.Info("restored router state", zap.Uint64("total_plays", state.TotalPlays))
	}
	extractor := turiya.NewDefaultExtractor()

	var turns []collab.Turn
	lastRecallHits := 0
	toolNames := []string{"run_tests", "shell", "read_file", "edit_file"}

	for i, dt := range demoTranscript {
		turnNumber := uint32(i + 1)
		turns = append(turns, collab.Turn{
			TurnNumber: turnNumber,
			Role:       dt.role,
			Content:    dt.content,
			StartedAt:  int64(i) * 1000,
		})

		sourceID := fmt.Sprintf("%s-turn-%d", demoSessionID, turnNumber)
		entry, err := recallStore.Upsert(ctx, "session", sourceID, dt.content, map[string]any{"role": dt.role})
		if err != nil {
			return fmt.Errorf("index turn %d: %w", turnNumber, err)
		}
		bm25.Index(entry.ID, dt.content)
		if firstWord := firstLowerWord(dt.content); firstWord != "" {
			graph.IndexTerm(firstWord, entry.ID)
		}
		if i > 0 {
			graph.AddEdge(fmt.Sprintf("%s-turn-%d", demoSessionID, turnNumber-1), entry.ID)
		}

		if dt.role == "user" {
			turiyaCtx := extractor.Extract(turns, demoSystemPrompt, toolNames, lastRecallHits)
			decision := router.Cascade(router.Classify(turiyaCtx))
			logger.Info("routed turn",
				zap.Uint32("turn", turnNumber),
				zap.String("tier", decision.Tier.String()),
				zap.Float64("confidence", decision.Confidence),
				zap.String("rationale", decision.Rationale),
			)

			results, err := engine.GatedSearch(ctx, dt.content)
			if err != nil {
				return fmt.Errorf("gated search turn %d: %w", turnNumber, err)
			}
			lastRecallHits = len(results)
			logger.Info("recall results", zap.Uint32("turn", turnNumber), zap.Int("count", len(results)))
			if len(results) > 0 {
				engine.RecordFeedback(results[0], dt.reward >= 0.5)
			}

			router.RecordOutcome(decision, dt.reward)
		}

		if dt.toolExec != nil {
			if _, err := controller.AfterToolExecution(ctx, *dt.toolExec); err != nil {
				return fmt.Errorf("guardian tool scan turn %d: %w", turnNumber, err)
			}
		}

		role := guardians.RoleAssistant
		if dt.role == "user" {
			role = guardians.RoleUser
		}
		gturn := guardians.Turn{
			SessionID:  demoSessionID,
			TurnNumber: int(turnNumber),
			Role:       role,
			Content:    dt.content,
			ToolFailed: dt.toolFailed,
			ToolName:   dt.toolName,
		}
		metrics := guardians.TurnMetrics{TokensThisTurn: dt.tokens, ContextUsedPct: dt.contextPct}
		if _, err := controller.AfterTurn(ctx, gturn, metrics); err != nil {
			return fmt.Errorf("guardian turn observe %d: %w", turnNumber, err)
		}
	}

	if err := st.Bandit().SaveRouterState(ctx, demoProject, router.Serialize()); err != nil {
		return fmt.Errorf("save router state: %w", err)
	}
	if err := st.Bandit().SaveWeightLearnerState(ctx, demoProject, learner.Serialize()); err != nil {
		return fmt.Errorf("save weight learner state: %w", err)
	}

	sessionMeta := collab.SessionMeta{
		ID:        demoSessionID,
		Project:   demoProject,
		Title:     "auth incident + onboarding brainstorm",
		CreatedAt: 0,
		UpdatedAt: int64(len(demoTranscript)-1) * 1000,
	}
	if err := st.Sessions().PutSession(ctx, sessionMeta, turns); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	scope := collab.Scope{Type: collab.ScopeProject, Path: demoProject}
	summary := fmt.Sprintf("replayed %d turns; final router tier cascade threshold=%.2f", len(demoTranscript), cfg.Router.QualityThreshold)
	if err := st.Memory().Append(ctx, scope, summary); err != nil {
		return fmt.Errorf("append memory: %w", err)
	}

	stats := router.Stats()
	logger.Info("router stats",
		zap.Uint64("total_requests", stats.TotalRequests),
		zap.Float64("total_cost", stats.TotalCost),
		zap.Float64("cost_savings", stats.CostSavings),
		zap.Float64("savings_percent", stats.SavingsPercent),
	)

	ctrlStats := controller.Stats()
	logger.Info("guardian stats",
		zap.Int("rakshaka_findings", ctrlStats.Rakshaka.TotalFindings),
		zap.Int("gati_findings", ctrlStats.Gati.TotalFindings),
		zap.Int("satya_findings", ctrlStats.Satya.TotalFindings),
	)

	return nil
}

func firstLowerWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(fields[0], ".,:;!?\"'"))
}
