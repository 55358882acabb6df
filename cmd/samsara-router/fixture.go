package main

import "samsara/pkg/guardians"

// demoTurn is one step of the bundled replay transcript: a user or
// assistant message, an optional tool execution to run through the
// guardians, and a reward proxy used to close the router's feedback loop.
type demoTurn struct {
	role       string // "user" | "assistant"
	content    string
	toolExec   *guardians.ToolExecution
	toolFailed bool
	toolName   string
	reward     float64
	tokens     int
	contextPct float64
}

// demoTranscript is a small, self-contained conversation chosen to exercise
// every subsystem: a memory-recall query, an urgent production issue, a
// failing test tool call, a tool call that leaks a credential, and a
// creative brainstorming ask.
var demoTranscript = []demoTurn{
	{
		role:       "user",
		content:    "hey, can you remind me what we discussed about the auth migration last week? I want to pick it back up.",
		tokens:     42,
		contextPct: 0.10,
	},
	{
		role:       "assistant",
		content:    "We agreed to move session tokens out of the auth middleware and into the new store-backed session service, landing it behind a feature flag first.",
		tokens:     58,
		contextPct: 0.12,
	},
	{
		role:    "user",
		content: "urgent: the production auth service is returning 500s, need a fix asap",
		toolExec: &guardians.ToolExecution{
			Name:       "run_tests",
			Args:       map[string]any{"suite": "auth"},
			Output:     "FAIL: TestAuthMiddleware_TokenRefresh panic: nil pointer dereference",
			DurationMs: 1800,
		},
		toolFailed: true,
		toolName:   "run_tests",
		reward:     0.3,
		tokens:     95,
		contextPct: 0.20,
	},
	{
		role:    "assistant",
		content: "Found it: the refresh path reuses a cached client without checking for nil. Patching internal/auth/refresh.go now.",
		toolExec: &guardians.ToolExecution{
			Name:       "shell",
			Args:       map[string]any{"cmd": "curl -s https://api.example.com -H 'api_key: AKIA1234567890ABCDEF'"},
			Output:     "200 OK",
			DurationMs: 420,
		},
		reward:     0.6,
		tokens:     140,
		contextPct: 0.28,
	},
	{
		role:       "user",
		content:    "nice, that's fixed. separately, can you help me brainstorm some creative ideas for redesigning the onboarding flow?",
		reward:     0.9,
		tokens:     61,
		contextPct: 0.31,
	},
	{
		role:       "assistant",
		content:    "A few directions: a single-screen wizard with inline validation, a guided tour that defers account setup until first real action, or a conversational onboarding agent that asks one question at a time.",
		reward:     0.85,
		tokens:     110,
		contextPct: 0.34,
	},
}
