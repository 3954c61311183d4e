// Package tui is an interactive terminal chat over the FAQ engine.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/poiesic/faqmatch/core"
)

// Answerer is the TUI-facing subset of the engine.
type Answerer interface {
	Answer(ctx context.Context, question string) (*core.MatchResult, error)
}

// exchange is one question and its outcome in the transcript.
type exchange struct {
	question string
	result   *core.MatchResult
	err      error
}

const unavailableStatus = "Service unavailable. Please try again later."

// answerMsg delivers the outcome of an asynchronous Answer call.
type answerMsg exchange

// Model is the Bubble Tea model for the chat.
type Model struct {
	ctx         context.Context
	answerer    Answerer
	logger      *slog.Logger
	input       textinput.Model
	viewport    viewport.Model
	transcript  []exchange
	summary     string
	status      string
	pending     bool
	showMatches bool
	ready       bool
}

// New creates a chat model. summary is shown under the title.
func New(ctx context.Context, answerer Answerer, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 500
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		answerer: answerer,
		logger:   slog.Default().With("component", "tui"),
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Ready. Ctrl+T toggles top matches, Esc quits.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header and summary, status, input box
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case answerMsg:
		m.pending = false
		m.transcript = append(m.transcript, exchange(msg))
		if msg.err != nil {
			m.logger.Error("answer failed", "err", msg.err)
			m.status = unavailableStatus
		} else {
			m.status = statusLine(msg.result)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlT:
			m.showMatches = !m.showMatches
			m.refresh()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			if m.pending {
				return m, nil
			}
			q := m.input.Value()
			m.input.Reset()
			m.pending = true
			m.status = "Thinking..."
			return m, m.ask(q)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	ctx, answerer := m.ctx, m.answerer
	return func() tea.Msg {
		result, err := answerer.Answer(ctx, question)
		return answerMsg{question: question, result: result, err: err}
	}
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("FAQ Assistant")
	summary := mutedStyle.Render(m.summary)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return mutedStyle.Render("No questions yet.")
	}
	var b strings.Builder
	for i, ex := range m.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(userStyle.Render("You: "))
		b.WriteString(strings.TrimSpace(ex.question))
		b.WriteString("\n")
		b.WriteString(botStyle.Render("Bot: "))
		switch {
		case ex.err != nil:
			b.WriteString(errorStyle.Render("The service is unavailable. Please try again later."))
		default:
			b.WriteString(ex.result.Answer)
			if ex.result.Matched() {
				b.WriteString(mutedStyle.Render(fmt.Sprintf("  (confidence %.2f)", ex.result.Confidence)))
			}
		}
		b.WriteString("\n")
		if m.showMatches && ex.err == nil && ex.result.Matched() {
			for j, tm := range ex.result.TopMatches {
				b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d. %.2f  %s", j+1, tm.Score, tm.Question)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func statusLine(r *core.MatchResult) string {
	switch r.Status {
	case core.StatusMatched:
		return fmt.Sprintf("Matched with confidence %.2f", r.Confidence)
	case core.StatusNoMatch:
		return "No confident match"
	default:
		return "Empty question"
	}
}

var (
	titleStyle         = lipgloss.NewStyle().Bold(true)
	mutedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Run starts the chat program and blocks until the user quits.
func Run(ctx context.Context, answerer Answerer, summary string) error {
	_, err := tea.NewProgram(New(ctx, answerer, summary), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
