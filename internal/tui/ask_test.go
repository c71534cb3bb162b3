// internal/tui/ask_test.go
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwiater/grounded/internal/rag"
)

type stubAsker struct {
	queries []string
	answer  rag.Answer
	err     error
}

func (s *stubAsker) Ask(_ context.Context, query string, topK int) (rag.Answer, rag.RetrievalResult, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return rag.Answer{}, rag.RetrievalResult{}, s.err
	}
	return s.answer, rag.RetrievalResult{Results: make([]rag.QueryResult, topK), SourceCoverage: 1, RetrievalMs: 7}, nil
}

func typeText(m *model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// TestAskRoundTrip submits a question, runs the returned command batch and
// feeds the answer back into the model.
func TestAskRoundTrip(t *testing.T) {
	asker := &stubAsker{answer: rag.Answer{Answer: "Cats purr [cats.md:0].", Citations: []string{"cats.md:0"}}}
	m := initialModel(context.Background(), asker, "store.json", 2)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	typeText(m, "What do cats do?")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command after enter")
	}
	if !m.isLoading || m.pending != "What do cats do?" {
		t.Fatalf("expected pending request, got loading=%v pending=%q", m.isLoading, m.pending)
	}

	msg := askCmd(m.ctx, asker, m.pending, m.topK)()
	if _, ok := msg.(answerMsg); !ok {
		t.Fatalf("expected answerMsg, got %T", msg)
	}
	m.Update(msg)

	if m.isLoading {
		t.Fatal("expected loading to stop after the answer")
	}
	if len(m.history) != 1 || m.history[0].question != "What do cats do?" {
		t.Fatalf("unexpected history: %+v", m.history)
	}
	view := m.View()
	if !strings.Contains(view, "cats.md:0") || !strings.Contains(view, "Chunks: 2") {
		t.Fatalf("view missing answer details:\n%s", view)
	}
}

func TestAskErrorIsShownInline(t *testing.T) {
	asker := &stubAsker{err: errors.New("vector store missing")}
	m := initialModel(context.Background(), asker, "store.json", 3)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m.pending = "anything"
	m.isLoading = true

	m.Update(askCmd(m.ctx, asker, "anything", 3)())

	if len(m.history) != 1 || m.history[0].err == nil {
		t.Fatalf("expected failed exchange, got %+v", m.history)
	}
	if !strings.Contains(m.View(), "vector store missing") {
		t.Fatal("expected error text in view")
	}
}

func TestAskIgnoresBlankInputAndQuits(t *testing.T) {
	m := initialModel(context.Background(), &stubAsker{}, "store.json", 3)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil || m.isLoading {
		t.Fatal("blank input should not start a request")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Fatal("expected quit command on esc")
	}
}
