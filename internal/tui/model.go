package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"triage/internal/domain"
	"triage/internal/fields"
)

// TriagePort is the TUI-facing subset of the triage service.
type TriagePort interface {
	Triage(ctx context.Context, raw string, schema fields.Schema) domain.TriageResult
}

// Model is the Bubble Tea model for the intake console.
type Model struct {
	service  TriagePort
	schema   fields.Schema
	input    textinput.Model
	viewport viewport.Model
	result   *domain.TriageResult
	status   string
	cursor   int
	ready    bool
	lastRaw  string
}

// New creates the intake console model. A nil schema drafts fields against
// the default tracker schema.
func New(service TriagePort, schema fields.Schema) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the request and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, schema: schema, input: ti, viewport: vp, status: "Ready. Type a request to triage."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and input boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			if raw != "" {
				res := m.service.Triage(context.Background(), raw, m.schema)
				m.result = &res
				m.cursor = 0
				m.lastRaw = raw
				m.status = fmt.Sprintf("Triaged as %s → %s (%.0f%%)",
					res.Classification.Type, res.Classification.TargetAgent, res.Classification.Confidence*100)
				m.input.SetValue("")
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "down":
			if n := m.groundingLen(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "up":
			if n := m.groundingLen(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.render())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Intake Triage")
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	result := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + result + "\n" + input + "\n" + status
}

func (m Model) groundingLen() int {
	if m.result == nil {
		return 0
	}
	return len(m.result.Grounding.SimilarTickets) + len(m.result.Grounding.DocExcerpts)
}

func (m Model) render() string {
	if m.result == nil {
		return "No result yet."
	}
	var b strings.Builder
	cls := m.result.Classification
	b.WriteString(labelStyle.Render("Classification") + "\n")
	fmt.Fprintf(&b, "  %s (confidence %.2f) → %s\n", cls.Type, cls.Confidence, cls.TargetAgent)
	if cls.Reasoning != "" {
		fmt.Fprintf(&b, "  %s\n", cls.Reasoning)
	}
	b.WriteString("\n" + labelStyle.Render("Drafted Fields") + "\n")
	b.WriteString(renderFields(m.result.Fields, m.schema))
	b.WriteString("\n" + labelStyle.Render("Grounding") + "\n")
	b.WriteString(m.renderGrounding())
	return b.String()
}

// renderFields lists drafted fields in schema order so the output is stable
// between runs.
func renderFields(values map[string]any, schema fields.Schema) string {
	if len(values) == 0 {
		return "  (none)\n"
	}
	keys := schema.Keys()
	if len(keys) == 0 {
		keys = fields.Default().Keys()
	}
	var b strings.Builder
	for _, key := range keys {
		v, ok := values[key]
		if !ok {
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			data = []byte(fmt.Sprintf("%v", v))
		}
		fmt.Fprintf(&b, "  %s: %s\n", key, data)
	}
	return b.String()
}

func (m Model) renderGrounding() string {
	g := m.result.Grounding
	if g.Empty() {
		return "  (no similar tickets or documentation found)\n"
	}
	var b strings.Builder
	i := 0
	for _, t := range g.SimilarTickets {
		marker := "  "
		line := fmt.Sprintf("[%s] score=%.3f %s", t.ID, t.Score, firstLine(t.Text))
		if i == m.cursor {
			marker = "» "
			line = highlightMatches(flatten(t.Text), m.lastRaw)
		}
		b.WriteString(marker + line + "\n")
		i++
	}
	for _, d := range g.DocExcerpts {
		marker := "  "
		line := firstLine(d)
		if i == m.cursor {
			marker = "» "
			line = highlightMatches(flatten(d), m.lastRaw)
		}
		b.WriteString(marker + line + "\n")
		i++
	}
	return b.String()
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wordRe         = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// highlightMatches emphasizes every word of the entry that also appears in
// the request, so the reviewer sees at a glance why it matched. Non-word
// text passes through untouched.
func highlightMatches(text, query string) string {
	terms := make(map[string]struct{})
	for _, tok := range wordRe.FindAllString(strings.ToLower(query), -1) {
		terms[tok] = struct{}{}
	}
	if len(terms) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, span := range wordRe.FindAllStringIndex(text, -1) {
		b.WriteString(text[last:span[0]])
		word := text[span[0]:span[1]]
		if _, hit := terms[strings.ToLower(word)]; hit {
			b.WriteString(highlightStyle.Render(word))
		} else {
			b.WriteString(word)
		}
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
