// internal/tui/ask.go
// Package tui provides the interactive question loop over a built index.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/grounded/internal/rag"
)

// Asker answers a question from the index.
type Asker interface {
	Ask(ctx context.Context, query string, topK int) (rag.Answer, rag.RetrievalResult, error)
}

// exchange is one question with its answer or failure.
type exchange struct {
	question  string
	answer    rag.Answer
	retrieval rag.RetrievalResult
	err       error
}

type answerMsg struct {
	answer    rag.Answer
	retrieval rag.RetrievalResult
}

type answerErr struct{ error }

type tickMsg time.Time

type model struct {
	ctx              context.Context
	asker            Asker
	topK             int
	storePath        string
	width            int
	height           int
	textArea         textarea.Model
	viewport         viewport.Model
	spinner          spinner.Model
	history          []exchange
	pending          string
	isLoading        bool
	requestStartTime time.Time
}

func initialModel(ctx context.Context, asker Asker, storePath string, topK int) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Ask about your documents..."
	ta.Focus()
	ta.Prompt = "Question: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return &model{
		ctx:       ctx,
		asker:     asker,
		topK:      topK,
		storePath: storePath,
		textArea:  ta,
		viewport:  viewport.New(100, 5),
		spinner:   s,
	}
}

func askCmd(ctx context.Context, asker Asker, query string, topK int) tea.Cmd {
	return func() tea.Msg {
		answer, retrieval, err := asker.Ask(ctx, query, topK)
		if err != nil {
			return answerErr{err}
		}
		return answerMsg{answer: answer, retrieval: retrieval}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.isLoading {
				return m, nil
			}
			query := strings.TrimSpace(m.textArea.Value())
			if query == "" {
				return m, nil
			}
			m.pending = query
			m.textArea.Reset()
			m.isLoading = true
			m.requestStartTime = time.Now()
			return m, tea.Batch(m.spinner.Tick, askCmd(m.ctx, m.asker, query, m.topK), tickCmd())
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 2
		footerHeight := 3
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-headerHeight-footerHeight)

	case answerMsg:
		m.history = append(m.history, exchange{question: m.pending, answer: msg.answer, retrieval: msg.retrieval})
		m.finishRequest()
		return m, nil

	case answerErr:
		m.history = append(m.history, exchange{question: m.pending, err: msg.error})
		m.finishRequest()
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
	} else {
		m.textArea, cmd = m.textArea.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) finishRequest() {
	m.pending = ""
	m.isLoading = false
	m.textArea.Focus()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var builder strings.Builder
	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(" (enter to ask, esc to quit)")
	builder.WriteString(headerStyle.Render(fmt.Sprintf("Store: %s  Top K: %d", m.storePath, m.topK)) + help + "\n\n")

	m.viewport.SetContent(m.renderHistory())
	builder.WriteString(m.viewport.View())

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString("\n" + m.spinner.View() + fmt.Sprintf(" Retrieving and answering... %ss", timer))
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}
	return builder.String()
}

func (m *model) renderHistory() string {
	userStyle := lipgloss.NewStyle().Bold(true)
	assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	citationStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	width := max(20, m.width-14)

	var b strings.Builder
	for _, ex := range m.history {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, userStyle.Render("You: "),
			lipgloss.NewStyle().Width(width).Render(ex.question)) + "\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", ex.err)) + "\n\n")
			continue
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, assistantStyle.Render("Assistant: "),
			lipgloss.NewStyle().Width(width).Render(ex.answer.Answer)) + "\n")
		b.WriteString(citationStyle.Render(formatCitations(ex)) + "\n\n")
	}
	if m.pending != "" {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, userStyle.Render("You: "), m.pending))
	}
	return b.String()
}

func formatCitations(ex exchange) string {
	citations := "none"
	if len(ex.answer.Citations) > 0 {
		citations = strings.Join(ex.answer.Citations, ", ")
	}
	return fmt.Sprintf("  >>> [Citations: %s] [Chunks: %d | Sources: %d] [Retrieval: %dms]",
		citations, len(ex.retrieval.Results), ex.retrieval.SourceCoverage, ex.retrieval.RetrievalMs)
}

// Run starts the interactive loop and blocks until the user quits.
func Run(ctx context.Context, asker Asker, storePath string, topK int) error {
	m := initialModel(ctx, asker, storePath, topK)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ask session: %w", err)
	}
	return nil
}
