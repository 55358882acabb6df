package guardians

import (
	"fmt"
	"regexp"
	"strings"

	"samsara/pkg/decay"
)

// RakshakaConfig carries Rakshaka's confidenceThreshold plus ring capacity.
type RakshakaConfig struct {
	ConfidenceThreshold float64
	RingCapacity        int
	Enabled             bool
}

// DefaultRakshakaConfig returns a config with threshold 0.3 and the
// default ring capacity, enabled. 0.05 is the validated floor (see
// Validate), not the default; Rakshaka starts more conservative than the
// floor and operators lower it explicitly if they want more findings.
func DefaultRakshakaConfig() RakshakaConfig {
	return RakshakaConfig{ConfidenceThreshold: 0.3, RingCapacity: DefaultRingCapacity, Enabled: true}
}

// Validate clamps ConfidenceThreshold to [0.05, 1.0] and RingCapacity to
// [1, MaxRingCapacity].
func (c RakshakaConfig) Validate() RakshakaConfig {
	c.ConfidenceThreshold = decay.ClampRate(c.ConfidenceThreshold, 0.05, 1.0)
	if c.RingCapacity <= 0 {
		c.RingCapacity = DefaultRingCapacity
	}
	if c.RingCapacity > MaxRingCapacity {
		c.RingCapacity = MaxRingCapacity
	}
	return c
}

type securityPattern struct {
	family      string
	pattern     *regexp.Regexp
	severity    Severity
	confidence  float64
	shellOnly   bool
	titlePrefix string
}

var (
	reGenericAPIKey  = regexp.MustCompile(`(?i)api[_-]?key["']?\s*[:=]\s*["']?[A-Za-z0-9+/_-]{20,}`)
	reOpenAIKey      = regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)
	reGitHubToken    = regexp.MustCompile(`ghp_[A-Za-z0-9]{30,}`)
	reAWSKey         = regexp.MustCompile(`AKIA[0-9A-Z]{16}`)
	reJWT            = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)
	rePrivateKey     = regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |DSA |)PRIVATE KEY-----`)
	reDangerousRmRf  = regexp.MustCompile(`rm\s+-rf\s+/(\s|$)`)
	reChmod777       = regexp.MustCompile(`chmod\s+777`)
	rePipeToSh       = regexp.MustCompile(`\|\s*(sh|bash)\b`)
	reDdOfDev        = regexp.MustCompile(`dd\s+.*of=/dev/`)
	reDropTable      = regexp.MustCompile(`(?i)drop\s+table`)
	reUnionSelect    = regexp.MustCompile(`(?i)union\s+select`)
	reBooleanInject  = regexp.MustCompile(`'\s*or\s*'1'\s*=\s*'1`)
	reChainedQuote   = regexp.MustCompile(`';`)
	rePathTraversal  = regexp.MustCompile(`(\.\./){2,}`)
	reSensitiveFiles = regexp.MustCompile(`(/etc/passwd|\.ssh/|\.env\b)`)
)

// Rakshaka scans tool invocations and file-change/command-output context for
// credential leaks, dangerous shell invocations, SQL injection shapes, path
// traversal, and sensitive-file access.
type Rakshaka struct {
	cfg  RakshakaConfig
	ring *FindingRing
}

// NewRakshaka constructs a Rakshaka with a validated config and its own ring.
func NewRakshaka(cfg RakshakaConfig) *Rakshaka {
	cfg = cfg.Validate()
	return &Rakshaka{cfg: cfg, ring: NewFindingRing(cfg.RingCapacity)}
}

func (r *Rakshaka) Enabled() bool   { return r.cfg.Enabled }
func (r *Rakshaka) Ring() *FindingRing { return r.ring }

// RakshakaStats summarizes the guardian's running counts.
type RakshakaStats struct {
	TotalFindings int
	ByDomain      map[Severity]int
}

func (r *Rakshaka) Stats() RakshakaStats {
	all := r.ring.All()
	stats := RakshakaStats{TotalFindings: len(all), ByDomain: make(map[Severity]int)}
	for _, f := range all {
		stats.ByDomain[f.Severity]++
	}
	return stats
}

func argsToText(args map[string]any) string {
	var b strings.Builder
	stringifyArgs(&b, args, 0)
	return b.String()
}

// stringifyArgs renders nested tool args bounded to 3 levels, matching the
// guardian-facing ToolExecution shape's "dynamic tool args" note.
func stringifyArgs(b *strings.Builder, v any, depth int) {
	if depth > 3 {
		b.WriteString("...")
		return
	}
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			b.WriteString(k)
			b.WriteString("=")
			stringifyArgs(b, val, depth+1)
			b.WriteString(" ")
		}
	case []any:
		for _, item := range t {
			stringifyArgs(b, item, depth+1)
			b.WriteString(" ")
		}
	default:
		fmt.Fprintf(b, "%v", t)
	}
}

func isShellTool(name string) bool {
	lower := strings.ToLower(name)
	return lower == "bash" || lower == "shell" || lower == "sh" || strings.Contains(lower, "exec")
}

// Scan performs a one-shot pattern scan over a tool execution, returning
// findings at or above the confidenceThreshold. Findings are pushed onto the
// ring as a side effect.
func (r *Rakshaka) Scan(exec ToolExecution) []Finding {
	if !r.cfg.Enabled {
		return nil
	}

	argsText := argsToText(exec.Args)
	combined := argsText + "\n" + exec.Output
	var out []Finding

	emit := func(severity Severity, confidence float64, title, description string) {
		if confidence < r.cfg.ConfidenceThreshold {
			return
		}
		f := newFinding("rakshaka", DomainSecurity, severity, title, description, confidence, false)
		r.ring.Push(f)
		out = append(out, f)
	}

	if reOpenAIKey.MatchString(combined) || reGitHubToken.MatchString(combined) ||
		reAWSKey.MatchString(combined) || reJWT.MatchString(combined) {
		emit(SeverityCritical, 0.95, "Provider-keyed token detected", "A provider-specific credential pattern (OpenAI/GitHub/AWS/JWT) was found in tool args or output.")
	}
	if reGenericAPIKey.MatchString(combined) {
		emit(SeverityCritical, 0.92, "Credential leak detected", "A generic api_key-shaped secret was found in tool args or output.")
	}

	if rePrivateKey.MatchString(exec.Output) {
		emit(SeverityCritical, 0.98, "Private key header detected", "A PEM private key header was found in tool output.")
	}

	if isShellTool(exec.Name) {
		if reDangerousRmRf.MatchString(combined) || reChmod777.MatchString(combined) ||
			rePipeToSh.MatchString(combined) || reDdOfDev.MatchString(combined) {
			emit(SeverityCritical, 0.90, "Dangerous shell command", "A destructive or privilege-widening shell pattern was found in the invocation.")
		}
	}

	if reDropTable.MatchString(combined) || reUnionSelect.MatchString(combined) ||
		reBooleanInject.MatchString(combined) || reChainedQuote.MatchString(combined) {
		emit(SeverityHigh, 0.80, "Possible SQL injection", "A query-like argument contains an injection-shaped pattern.")
	}

	if rePathTraversal.MatchString(combined) {
		emit(SeverityHigh, 0.75, "Path traversal attempt", "Arguments contain two or more '../' segments.")
	}

	if reSensitiveFiles.MatchString(combined) {
		emit(SeverityMedium, 0.70, "Sensitive file access", "A path referencing /etc/passwd, .ssh/, or .env was found.")
	}

	return out
}

// Observe satisfies the guardian streaming-observation contract by delegating
// to Scan; Rakshaka has no additional streaming-only state.
func (r *Rakshaka) Observe(exec ToolExecution) []Finding {
	return r.Scan(exec)
}
