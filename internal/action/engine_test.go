package action

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hragent/internal/domain"
)

func fixedEngine() *Engine {
	return NewEngineAt(func() time.Time { return wed })
}

// asMap round-trips a payload through JSON so tests assert on the exact
// wire shape downstream automation sees.
func asMap(t *testing.T, payload any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestApplyLeaveNextMonday(t *testing.T) {
	p, err := fixedEngine().Build(domain.ApplyLeave, "Apply for earned leave next Monday")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Equal(t, "apply_leave", m["action"])
	assert.Equal(t, "earned", m["leave_type"])
	assert.Equal(t, "2026-03-09", m["start_date"])
	assert.Equal(t, "2026-03-09", m["end_date"])
	assert.Nil(t, m["reason"])
}

func TestApplyLeaveSickDaysWithReason(t *testing.T) {
	p, err := fixedEngine().Build(domain.ApplyLeave, "I need 3 days of sick leave, feeling unwell")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Equal(t, "sick", m["leave_type"])
	assert.Equal(t, "2026-03-05", m["start_date"])
	assert.Equal(t, "2026-03-07", m["end_date"])
	assert.Equal(t, "medical reasons", m["reason"])
}

func TestApplyLeaveNoSlots(t *testing.T) {
	p, err := fixedEngine().Build(domain.ApplyLeave, "apply for leave")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Nil(t, m["leave_type"])
	assert.Nil(t, m["start_date"])
	assert.Nil(t, m["end_date"])
	assert.Nil(t, m["reason"])
}

func TestScheduleMeeting(t *testing.T) {
	p, err := fixedEngine().Build(domain.ScheduleMeeting, "Schedule a meeting with payroll about my payslip tomorrow at 3pm")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Equal(t, "schedule_meeting", m["action"])
	assert.Equal(t, "payroll", m["department"])
	assert.Equal(t, "2026-03-05T15:00:00", m["date_time"])
	assert.Equal(t, "my payslip", m["topic"])
}

func TestCreateTicketUrgent(t *testing.T) {
	p, err := fixedEngine().Build(domain.CreateTicket, "Raise an urgent ticket, my laptop is broken")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Equal(t, "create_ticket", m["action"])
	assert.Equal(t, "it", m["category"])
	assert.Equal(t, "high", m["priority"])
	assert.NotNil(t, m["description"])
}

func TestCreateTicketDefaultsNormalPriority(t *testing.T) {
	p, err := fixedEngine().Build(domain.CreateTicket, "open a ticket about my payroll deduction")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Equal(t, "payroll", m["category"])
	assert.Equal(t, "normal", m["priority"])
}

func TestCheckEligibility(t *testing.T) {
	p, err := fixedEngine().Build(domain.CheckEligibility, "Am I eligible to claim 2000 for internet allowance?")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Equal(t, "check_eligibility", m["action"])
	assert.Equal(t, "internet", m["benefit"])
	assert.Equal(t, float64(2000), m["amount"])
}

func TestGetBalance(t *testing.T) {
	p, err := fixedEngine().Build(domain.GetBalance, "How much earned leave do I have left?")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Equal(t, "get_balance", m["action"])
	assert.Equal(t, "earned_leave", m["balance_type"])
}

func TestEscalate(t *testing.T) {
	p, err := fixedEngine().Build(domain.Escalate, "Escalate my unresolved complaint, this is urgent")
	require.NoError(t, err)

	m := asMap(t, p)
	assert.Equal(t, "escalate", m["action"])
	assert.Equal(t, "complaint", m["reason"])
	assert.Equal(t, "high", m["urgency"])
	assert.NotNil(t, m["summary"])
}

func TestUnknownKindErrors(t *testing.T) {
	_, err := fixedEngine().Build(domain.ActionKind("promote_me"), "promote me")
	assert.Error(t, err)
}

// Payload key sets are fixed per sub-kind regardless of which slots the
// query filled.
func TestPayloadKeySets(t *testing.T) {
	want := map[domain.ActionKind][]string{
		domain.ApplyLeave:       {"action", "leave_type", "start_date", "end_date", "reason"},
		domain.ScheduleMeeting:  {"action", "department", "date_time", "topic"},
		domain.CreateTicket:     {"action", "category", "priority", "subject", "description"},
		domain.CheckEligibility: {"action", "benefit", "amount"},
		domain.GetBalance:       {"action", "balance_type"},
		domain.Escalate:         {"action", "reason", "summary", "urgency"},
	}
	for kind, keys := range want {
		p, err := fixedEngine().Build(kind, "x")
		require.NoError(t, err)
		m := asMap(t, p)
		assert.Len(t, m, len(keys), "%s key count", kind)
		for _, k := range keys {
			_, present := m[k]
			assert.True(t, present, "%s missing key %s", kind, k)
		}
	}
}
