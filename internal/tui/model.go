package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hragent/internal/domain"
)

// AgentPort is the TUI-facing subset of the agent.
type AgentPort interface {
	Process(ctx context.Context, query string) (domain.Response, error)
}

type turn struct {
	query string
	reply string
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	agent    AgentPort
	input    textinput.Model
	viewport viewport.Model
	turns    []turn
	summary  string
	status   string
	ready    bool
}

// New creates a new chat model over a ready agent. The summary line
// typically reports what was indexed.
func New(agent AgentPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about HR policy or request an action"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{agent: agent, input: ti, viewport: vp, summary: summary, status: "Ready. Type a question and press Enter."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + summary
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				resp, err := m.agent.Process(context.Background(), q)
				if err != nil {
					m.status = "Error: " + err.Error()
				} else {
					m.turns = append(m.turns, turn{query: q, reply: renderResponse(resp)})
					m.status = fmt.Sprintf("Answered %q", q)
					m.input.SetValue("")
				}
				m.viewport.SetContent(m.renderTranscript())
				m.viewport.GotoBottom()
				return m, nil
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("HR Agent")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	transcript := transcriptStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "No conversation yet."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(queryStyle.Render("You: "+t.query) + "\n")
		b.WriteString(t.reply + "\n")
	}
	return b.String()
}

// renderResponse formats an agent response for display: action payloads as
// indented JSON, answers as text with a citation line.
func renderResponse(resp domain.Response) string {
	if resp.Action != nil {
		raw, err := json.MarshalIndent(resp.Action, "", "  ")
		if err != nil {
			return "Error: " + err.Error()
		}
		return actionStyle.Render(string(raw))
	}
	if resp.Answer == nil {
		return ""
	}
	text := resp.Answer.Text
	if len(resp.Answer.Citations) > 0 {
		text += "\n" + citationStyle.Render("Sources: "+pagesLine(resp.Answer.Citations))
	}
	return text
}

func pagesLine(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("page %d", p)
	}
	return strings.Join(parts, ", ")
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	actionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	citationStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
