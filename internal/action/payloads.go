package action

// Closed payload schemas, one per action sub-kind. Slots the query did not
// fill stay nil and serialize as explicit null; no schema ever grows extra
// keys. Downstream automation reads these payloads directly, so no
// explanatory prose may appear in any field.

type ApplyLeavePayload struct {
	Action    string  `json:"action"`
	LeaveType *string `json:"leave_type"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Reason    *string `json:"reason"`
}

type ScheduleMeetingPayload struct {
	Action     string  `json:"action"`
	Department *string `json:"department"`
	DateTime   *string `json:"date_time"`
	Topic      *string `json:"topic"`
}

type CreateTicketPayload struct {
	Action      string  `json:"action"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Subject     *string `json:"subject"`
	Description *string `json:"description"`
}

type CheckEligibilityPayload struct {
	Action  string  `json:"action"`
	Benefit *string `json:"benefit"`
	Amount  *int    `json:"amount"`
}

type GetBalancePayload struct {
	Action      string  `json:"action"`
	BalanceType *string `json:"balance_type"`
}

type EscalatePayload struct {
	Action  string  `json:"action"`
	Reason  *string `json:"reason"`
	Summary *string `json:"summary"`
	Urgency *string `json:"urgency"`
}
