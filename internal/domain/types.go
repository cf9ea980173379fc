package domain

import "encoding/json"

// Document represents a single ingested file as an ordered sequence of pages.
type Document struct {
	ID    string
	Path  string
	Pages []Page
}

// Page holds the raw extracted text of one document page (1-based numbering).
type Page struct {
	Number int
	Text   string
}

// Chunk is a semantically meaningful span of document text used for indexing.
// Every chunk traces back to at least one concrete page number so that
// answers can cite their sources. Chunks never span documents.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Pages      []int
	Index      int
	// Character offsets of the chunk within the normalized page text.
	Start int
	End   int
}

// FirstPage returns the first source page of the chunk, or 0 for a chunk
// without provenance (which the chunker never emits).
func (c Chunk) FirstPage() int {
	if len(c.Pages) == 0 {
		return 0
	}
	return c.Pages[0]
}

// Fact is a deterministically extracted line of structured policy data
// (amounts, limits, day counts) kept alongside the semantic chunks.
type Fact struct {
	Text string
	Page int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// IntentKind labels what a query is asking the agent to do.
type IntentKind int

const (
	Informational IntentKind = iota
	Comparative
	Action
)

func (k IntentKind) String() string {
	switch k {
	case Comparative:
		return "comparative"
	case Action:
		return "action"
	default:
		return "informational"
	}
}

// ActionKind identifies one of the closed set of supported HR actions.
type ActionKind string

const (
	ApplyLeave       ActionKind = "apply_leave"
	ScheduleMeeting  ActionKind = "schedule_meeting"
	CreateTicket     ActionKind = "create_ticket"
	CheckEligibility ActionKind = "check_eligibility"
	GetBalance       ActionKind = "get_balance"
	Escalate         ActionKind = "escalate"
)

// Intent is the classification of a single query. Action is only set when
// Kind == Action.
type Intent struct {
	Kind   IntentKind
	Action ActionKind
}

// Answer is a grounded natural-language response with page citations.
// Type distinguishes a real answer ("answer") from a clarification request
// ("clarification") so callers can discriminate without inspecting text.
type Answer struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Citations []int  `json:"citations"`
}

// Response is the normalized agent output: either a cited answer (or
// clarification) or a structured action payload, never both.
type Response struct {
	Answer *Answer
	Action any
}

// MarshalJSON emits the action payload directly when present, otherwise the
// answer object. The two shapes stay distinguishable by their "action" and
// "type" keys respectively.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Action != nil {
		return json.Marshal(r.Action)
	}
	return json.Marshal(r.Answer)
}

// NewAnswer wraps text and citations as an answer response.
func NewAnswer(text string, citations []int) Response {
	if citations == nil {
		citations = []int{}
	}
	return Response{Answer: &Answer{Type: "answer", Text: text, Citations: citations}}
}

// NewClarification wraps text as a clarification response with no citations.
func NewClarification(text string) Response {
	return Response{Answer: &Answer{Type: "clarification", Text: text, Citations: []int{}}}
}

// NewAction wraps a structured action payload.
func NewAction(payload any) Response {
	return Response{Action: payload}
}
