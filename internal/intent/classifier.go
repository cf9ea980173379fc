// Package intent classifies queries as informational, comparative or
// action-oriented, and gates actions the agent must refuse.
package intent

import (
	"context"
	"regexp"
	"strings"

	"hragent/internal/domain"
)

// AssistFunc is an optional semantic classifier consulted for queries the
// rules cannot place. It follows the same online/offline degradation
// policy as answer synthesis: when unavailable it reports ok=false and the
// rule-based default stands.
type AssistFunc func(ctx context.Context, query string) (domain.IntentKind, bool)

// Classifier labels queries using a fast deterministic keyword pass with an
// optional LLM-assisted fallback for ambiguous phrasing.
type Classifier struct {
	assist AssistFunc
}

func NewClassifier(assist AssistFunc) *Classifier {
	return &Classifier{assist: assist}
}

// actionVerbs are verbs that, used imperatively, signal an action request.
var actionVerbs = map[string]bool{
	"apply": true, "schedule": true, "book": true, "raise": true,
	"create": true, "open": true, "request": true, "take": true,
	"escalate": true, "check": true, "claim": true, "file": true,
	"get": true, "show": true,
}

// politeness words stripped before testing whether the sentence is
// imperative ("please apply..." is still imperative).
var politeness = map[string]bool{
	"please": true, "kindly": true, "hey": true, "hi": true, "hello": true,
}

var questionLeads = map[string]bool{
	"what": true, "how": true, "when": true, "where": true, "who": true,
	"why": true, "which": true, "is": true, "are": true, "does": true,
	"do": true, "am": true, "was": true, "were": true, "will": true,
}

var comparativeMarkers = []string{
	"compare", "difference between", "versus", " vs ", " vs.", "trend", "growth",
	"compared to", "compared with", "year over year",
}

var wantPrefixRe = regexp.MustCompile(`^i (?:want|need|would like|wish) to ([a-z]+)`)

// Classify labels a query. Tie-break policy: when both an action verb and
// an informational-question marker are present, Action wins only if the
// action verb is the main verb of an imperative sentence; everything
// ambiguous defaults to Informational, because executing an HR action
// erroneously is costlier than answering a question.
func (c *Classifier) Classify(ctx context.Context, query string) domain.Intent {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.Intent{Kind: domain.Informational}
	}

	imperative, verb := imperativeVerb(q)
	question := isQuestion(q)

	// An imperative action verb outranks comparative markers, so "apply
	// for both earned and sick leave versus unpaid leave" stays an action.
	if imperative && actionVerbs[verb] {
		return domain.Intent{Kind: domain.Action, Action: DetectSubkind(q)}
	}

	for _, marker := range comparativeMarkers {
		if strings.Contains(q, marker) {
			return domain.Intent{Kind: domain.Comparative}
		}
	}

	if !question {
		if containsActionVerb(q) && DetectSubkind(q) != "" {
			// Non-question phrasing with a clear action topic, e.g.
			// "i want to apply for sick leave".
			return domain.Intent{Kind: domain.Action, Action: DetectSubkind(q)}
		}
		if !containsActionVerb(q) && c.assist != nil {
			if kind, ok := c.assist(ctx, query); ok {
				return domain.Intent{Kind: kind, Action: actionFor(kind, q)}
			}
		}
	}

	return domain.Intent{Kind: domain.Informational}
}

func actionFor(kind domain.IntentKind, q string) domain.ActionKind {
	if kind != domain.Action {
		return ""
	}
	return DetectSubkind(q)
}

// imperativeVerb reports whether the sentence opens with a verb (after
// politeness words) and returns that verb. "I want to <verb>" phrasing
// counts as imperative for the inner verb.
func imperativeVerb(q string) (bool, string) {
	if m := wantPrefixRe.FindStringSubmatch(q); m != nil {
		return true, m[1]
	}
	words := strings.Fields(strings.Trim(q, "?!. "))
	for _, w := range words {
		w = strings.Trim(w, ",.;:")
		if politeness[w] {
			continue
		}
		if questionLeads[w] || w == "can" || w == "could" || w == "i" {
			return false, w
		}
		return actionVerbs[w], w
	}
	return false, ""
}

func isQuestion(q string) bool {
	if strings.HasSuffix(strings.TrimSpace(q), "?") {
		return true
	}
	words := strings.Fields(q)
	for _, w := range words {
		if politeness[w] {
			continue
		}
		return questionLeads[w] || w == "can" || w == "could"
	}
	return false
}

func containsActionVerb(q string) bool {
	for _, w := range strings.Fields(q) {
		if actionVerbs[strings.Trim(w, ",.;:?!")] {
			return true
		}
	}
	return false
}

// DetectSubkind maps an action query onto the closed taxonomy. An empty
// result means no subkind matched, which the orchestrator surfaces as a
// clarification request rather than an engine error.
func DetectSubkind(q string) domain.ActionKind {
	q = strings.ToLower(q)
	switch {
	case strings.Contains(q, "escalate") || strings.Contains(q, "talk to a human") ||
		strings.Contains(q, "representative") || strings.Contains(q, "complaint") ||
		strings.Contains(q, "frustrated"):
		return domain.Escalate
	case strings.Contains(q, "balance") || strings.Contains(q, "remaining") ||
		strings.Contains(q, "days left"):
		return domain.GetBalance
	case strings.Contains(q, "eligib") || strings.Contains(q, "allowance") ||
		strings.Contains(q, "reimburse") || strings.Contains(q, "claim") ||
		strings.Contains(q, "entitled"):
		return domain.CheckEligibility
	case strings.Contains(q, "meeting") || strings.Contains(q, "appointment") ||
		strings.Contains(q, "meet with") || strings.Contains(q, "calendar"):
		return domain.ScheduleMeeting
	case strings.Contains(q, "ticket") || strings.Contains(q, "it support") ||
		strings.Contains(q, "bug") || strings.Contains(q, "laptop") ||
		strings.Contains(q, "issue"):
		return domain.CreateTicket
	case strings.Contains(q, "leave") || strings.Contains(q, "time off") ||
		strings.Contains(q, "vacation") || strings.Contains(q, "sick day"):
		return domain.ApplyLeave
	}
	return ""
}

// CompareTargets splits a comparative query into the entities to retrieve
// independently. It falls back to the whole query when no split applies.
func CompareTargets(query string) []string {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)

	if i := strings.Index(lower, "difference between "); i >= 0 {
		rest := q[i+len("difference between "):]
		if parts := splitPair(rest, " and "); parts != nil {
			return parts
		}
	}
	for _, sep := range []string{" versus ", " vs. ", " vs ", " compared to ", " compared with "} {
		if parts := splitPair(q, sep); parts != nil {
			return parts
		}
	}
	return []string{q}
}

func splitPair(s, sep string) []string {
	i := strings.Index(strings.ToLower(s), sep)
	if i < 0 {
		return nil
	}
	left := strings.Trim(s[:i], " ?.!,")
	right := strings.Trim(s[i+len(sep):], " ?.!,")
	if left == "" || right == "" {
		return nil
	}
	return []string{left, right}
}
