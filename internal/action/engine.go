// Package action maps classified action queries onto fixed JSON payloads
// via deterministic rule-based slot extraction. No free-form generation
// touches these payloads, which is what guarantees schema conformance.
package action

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hragent/internal/domain"
)

// slotRule maps a trigger substring to the slot value it implies. Rules
// are evaluated in order; the first match wins.
type slotRule struct {
	trigger string
	value   string
}

var (
	leaveTypeRules = []slotRule{
		{"sick", "sick"},
		{"casual", "casual"},
		{"earned", "earned"},
		{"annual", "annual"},
		{"maternity", "maternity"},
		{"paternity", "paternity"},
		{"unpaid", "unpaid"},
	}
	leaveReasonRules = []slotRule{
		{"sick", "medical reasons"},
		{"medical", "medical reasons"},
		{"emergency", "emergency"},
		{"family", "family matters"},
		{"wedding", "family matters"},
	}
	// Short department names are space-anchored so "three" never reads as
	// "hr"; the query is padded with spaces before matching.
	departmentRules = []slotRule{
		{"recruit", "recruitment"},
		{"payroll", "payroll"},
		{" it ", "it"},
		{"finance", "finance"},
		{" hr ", "hr"},
	}
	ticketCategoryRules = []slotRule{
		{"payroll", "payroll"},
		{"benefit", "benefits"},
		{"laptop", "it"},
		{"software", "it"},
		{"access", "it"},
		{"bug", "it"},
		{"it support", "it"},
	}
	urgentRules = []slotRule{
		{"urgent", "high"},
		{"critical", "high"},
		{"blocking", "high"},
		{"immediately", "high"},
		{"asap", "high"},
	}
	benefitRules = []slotRule{
		{"internet", "internet"},
		{"education", "education"},
		{"relocation", "relocation"},
		{"travel", "travel"},
		{"medical", "medical"},
		{"gratuity", "gratuity"},
	}
	balanceRules = []slotRule{
		{"sick", "sick_leave"},
		{"casual", "casual_leave"},
		{"earned", "earned_leave"},
		{"leave", "leave"},
		{"allowance", "allowance"},
	}
	escalateReasonRules = []slotRule{
		{"complaint", "complaint"},
		{"frustrat", "frustration"},
		{"anger", "frustration"},
		{"harass", "grievance"},
		{"unresolved", "unresolved_issue"},
	}
)

func matchSlot(q string, rules []slotRule) *string {
	for _, r := range rules {
		if strings.Contains(q, r.trigger) {
			v := r.value
			return &v
		}
	}
	return nil
}

// Engine builds action payloads. The clock is injectable so relative date
// phrases resolve deterministically in tests.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt creates an engine with a fixed time source.
func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

type builderFunc func(e *Engine, q string) any

var builders = map[domain.ActionKind]builderFunc{
	domain.ApplyLeave:       (*Engine).applyLeave,
	domain.ScheduleMeeting:  (*Engine).scheduleMeeting,
	domain.CreateTicket:     (*Engine).createTicket,
	domain.CheckEligibility: (*Engine).checkEligibility,
	domain.GetBalance:       (*Engine).getBalance,
	domain.Escalate:         (*Engine).escalate,
}

// Build produces the payload for the given sub-kind. The taxonomy is
// closed: an unrecognized sub-kind is a classification error, the only
// error this engine returns. Missing slots never are.
func (e *Engine) Build(kind domain.ActionKind, query string) (any, error) {
	builder, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown action sub-kind %q", kind)
	}
	return builder(e, strings.ToLower(strings.TrimSpace(query))), nil
}

const dateLayout = "2006-01-02"

func (e *Engine) applyLeave(q string) any {
	p := ApplyLeavePayload{Action: string(domain.ApplyLeave)}
	p.LeaveType = matchSlot(q, leaveTypeRules)
	if r, ok := parseDateRange(q, e.now()); ok {
		p.StartDate = strPtr(r.Start.Format(dateLayout))
		p.EndDate = strPtr(r.End.Format(dateLayout))
	}
	p.Reason = matchSlot(q, leaveReasonRules)
	return p
}

func (e *Engine) scheduleMeeting(q string) any {
	p := ScheduleMeetingPayload{Action: string(domain.ScheduleMeeting)}
	p.Department = matchSlot(" "+q+" ", departmentRules)
	if t, ok := parseMeetingTime(q, e.now()); ok {
		p.DateTime = strPtr(t.Format("2006-01-02T15:04:05"))
	}
	p.Topic = extractTopic(q)
	return p
}

func (e *Engine) createTicket(q string) any {
	p := CreateTicketPayload{Action: string(domain.CreateTicket)}
	p.Category = matchSlot(q, ticketCategoryRules)
	if urgency := matchSlot(q, urgentRules); urgency != nil {
		p.Priority = urgency
	} else {
		p.Priority = strPtr("normal")
	}
	if desc := cleanDescription(q); desc != "" {
		p.Description = strPtr(desc)
	}
	return p
}

func (e *Engine) checkEligibility(q string) any {
	p := CheckEligibilityPayload{Action: string(domain.CheckEligibility)}
	p.Benefit = matchSlot(q, benefitRules)
	if n, ok := extractAmount(q); ok {
		p.Amount = &n
	}
	return p
}

func (e *Engine) getBalance(q string) any {
	p := GetBalancePayload{Action: string(domain.GetBalance)}
	p.BalanceType = matchSlot(q, balanceRules)
	return p
}

func (e *Engine) escalate(q string) any {
	p := EscalatePayload{Action: string(domain.Escalate)}
	p.Reason = matchSlot(q, escalateReasonRules)
	if s := strings.TrimSpace(q); s != "" {
		p.Summary = strPtr(s)
	}
	if urgency := matchSlot(q, urgentRules); urgency != nil {
		p.Urgency = urgency
	} else if strings.Contains(q, "frustrat") || strings.Contains(q, "anger") {
		p.Urgency = strPtr("high")
	} else {
		p.Urgency = strPtr("normal")
	}
	return p
}

var topicRe = regexp.MustCompile(`about\s+(.+?)(?:\s+on\b|\s+at\b|\s+next\b|\s+this\b|\s+tomorrow\b|$)`)

func extractTopic(q string) *string {
	m := topicRe.FindStringSubmatch(q)
	if m == nil {
		return nil
	}
	topic := strings.Trim(m[1], " ?.!,")
	if topic == "" {
		return nil
	}
	return &topic
}

var amountRe = regexp.MustCompile(`(\d+)`)

func extractAmount(q string) (int, bool) {
	m := amountRe.FindStringSubmatch(q)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

var ticketFillerRe = regexp.MustCompile(`\b(please|raise|create|open|a|an|the|ticket|for)\b`)

func cleanDescription(q string) string {
	s := ticketFillerRe.ReplaceAllString(q, " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " ?.!,")
}

func strPtr(s string) *string { return &s }
