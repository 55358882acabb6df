package turiya

import (
	"regexp"
	"strings"

	"samsara/internal/collab"
	"samsara/pkg/decay"
)

var (
	reCodeFence        = regexp.MustCompile("(?s)```.*?```")
	reFilePathToken     = regexp.MustCompile(`\b[\w./-]+\.[a-zA-Z]{1,6}\b`)
	reUrgencyMarker     = regexp.MustCompile(`(?i)\b(urgent|asap|production|critical)\b`)
	reMultiStepKeyword  = regexp.MustCompile(`(?i)\b(first|then|after that|next|finally|step \d)\b`)
	reExpertVocabulary  = regexp.MustCompile(`(?i)\b(algorithm|architecture|concurrency|idempotent|invariant|throughput|latency|schema)\b`)
	rePrecisionMarker   = regexp.MustCompile(`(?i)\b(exact|precisely|must|strictly|only|never|always)\b`)
	reCreativityMarker  = regexp.MustCompile(`(?i)\b(creative|brainstorm|imagine|idea|design|novel)\b`)
)

// FeatureExtractor derives a Context from recent turns and ambient signal.
// Implementations must be deterministic, pure, and fast (<1ms on 10kB of
// text).
type FeatureExtractor interface {
	Extract(turns []collab.Turn, systemPrompt string, toolNames []string, memoryHits int) Context
}

// DefaultExtractor implements the heuristics named in the spec: complexity
// from length/code/multi-step/vocabulary, urgency from emergency markers,
// codeRatio from fenced-block and file-path density, conversationDepth from
// message count, memoryLoad from memory-hit count.
type DefaultExtractor struct {
	MaxMemoryHits int // denominator for memoryLoad, default 10
}

func NewDefaultExtractor() *DefaultExtractor {
	return &DefaultExtractor{MaxMemoryHits: 10}
}

func lastNText(turns []collab.Turn, n int) string {
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func (e *DefaultExtractor) Extract(turns []collab.Turn, systemPrompt string, toolNames []string, memoryHits int) Context {
	text := lastNText(turns, 6)
	combined := systemPrompt + "\n" + text
	totalChars := float64(len(combined))
	if totalChars == 0 {
		totalChars = 1
	}

	codeChars := 0.0
	for _, m := range reCodeFence.FindAllString(combined, -1) {
		codeChars += float64(len(m))
	}
	filePathChars := 0.0
	for _, m := range reFilePathToken.FindAllString(combined, -1) {
		filePathChars += float64(len(m))
	}
	codeRatio := (codeChars + filePathChars) / totalChars

	complexity := 0.0
	complexity += decay.Clamp01(totalChars / 4000.0) // length contribution, tops out ~4kB
	if codeChars > 0 {
		complexity += 0.2
	}
	if reMultiStepKeyword.MatchString(combined) {
		complexity += 0.2
	}
	if reExpertVocabulary.MatchString(combined) {
		complexity += 0.2
	}
	complexity = decay.Clamp01(complexity)

	urgency := 0.0
	if reUrgencyMarker.MatchString(combined) {
		urgency = 0.8
	}

	precision := 0.0
	if rePrecisionMarker.MatchString(combined) {
		precision = 0.7
	}

	creativity := 0.0
	if reCreativityMarker.MatchString(combined) {
		creativity = 0.7
	}

	conversationDepth := decay.Clamp01(float64(len(turns)) / 20.0)

	maxHits := e.MaxMemoryHits
	if maxHits <= 0 {
		maxHits = 10
	}
	memoryLoad := decay.Clamp01(float64(memoryHits) / float64(maxHits))

	return Context{
		Complexity:        complexity,
		Urgency:           urgency,
		Creativity:        creativity,
		Precision:         precision,
		CodeRatio:         decay.Clamp01(codeRatio),
		ConversationDepth: conversationDepth,
		MemoryLoad:        memoryLoad,
	}.Clamp()
}
