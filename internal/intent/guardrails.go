package intent

import "strings"

// guardrail pairs trigger word groups with the refusal returned when both
// groups match. These checks run before any action is built: requests the
// agent must never execute get a clarification response instead.
type guardrail struct {
	verbs   []string
	objects []string
	refusal string
}

var guardrails = []guardrail{
	{
		verbs:   []string{"approve", "reject", "authorize"},
		objects: []string{"request", "application", "leave", "expense"},
		refusal: "I cannot approve or reject requests. Please contact your manager.",
	},
	{
		verbs:   []string{"modify", "change", "increase", "decrease", "update"},
		objects: []string{"salary", "contract", "pay", "compensation", "ctc"},
		refusal: "I cannot modify contracts or compensation. Please raise a payroll ticket.",
	},
	{
		verbs:   []string{"view", "show", "see"},
		objects: []string{"other", "colleague", "employee's", "manager's", "peer"},
		refusal: "I can only access your own records.",
	},
	{
		verbs:   []string{"fire", "terminate", "hire", "recruit"},
		objects: []string{""},
		refusal: "I cannot perform strategic HR functions like hiring or termination.",
	},
}

// Refusal returns the refusal text for queries asking for forbidden
// operations, and whether one matched.
func Refusal(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, g := range guardrails {
		if !containsAny(q, g.verbs) {
			continue
		}
		if !containsAny(q, g.objects) {
			continue
		}
		// Scheduling a meeting about hiring is fine.
		if g.verbs[0] == "fire" && (strings.Contains(q, "meeting") || strings.Contains(q, "schedule")) {
			continue
		}
		return g.refusal, true
	}
	return "", false
}

func containsAny(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}
