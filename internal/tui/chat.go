package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-advisor/internal/advisor"
	"portfolio-advisor/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Chat message types.
type advisorReplyMsg string
type advisorErrMsg struct{ err error }
type historyMsg []domain.PortfolioMessage

const (
	chatChromeLines = 6
	chatIndent      = 9
)

type chatEntry struct {
	sender domain.Sender
	text   string
	at     time.Time
}

// ChatModel is the advisor conversation for the session portfolio. Earlier
// turns are loaded from the conversation store when the screen starts.
type ChatModel struct {
	services      Services
	entries       []chatEntry
	input         textinput.Model
	viewport      viewport.Model
	spinner       spinner.Model
	markdown      *glamour.TermRenderer
	markdownWidth int
	waiting       bool
	historyLoaded bool
	err           error
	width         int
	height        int
}

// NewChatModel starts with an empty transcript; Init loads stored history.
func NewChatModel(svc Services) ChatModel {
	in := textinput.New()
	in.Placeholder = "Ask about your portfolio..."
	in.CharLimit = advisor.MaxMessageChars
	in.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(SpinnerColor)

	m := ChatModel{
		services: svc,
		input:    in,
		spinner:  sp,
		viewport: viewport.New(10, 3),
	}
	m.historyLoaded = !m.canChat()
	m.resizeMarkdown(60)
	return m
}

// resizeMarkdown rebuilds the reply renderer for a new wrap width. The
// style is fixed because the server cannot query the client's background.
func (m *ChatModel) resizeMarkdown(width int) {
	if width == m.markdownWidth && m.markdown != nil {
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithStylePath("dark"), glamour.WithWordWrap(width))
	if err != nil {
		m.markdown = nil
		return
	}
	m.markdown, m.markdownWidth = r, width
}

// renderReply formats advisor markdown, falling back to the raw text.
func (m ChatModel) renderReply(text string) string {
	if m.markdown == nil {
		return text
	}
	out, err := m.markdown.Render(text)
	if err != nil {
		return text
	}
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func (m ChatModel) canChat() bool {
	return m.services.Advisor != nil && m.services.HasPortfolio()
}

// Init starts the cursor blink and loads earlier messages.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchHistoryCmd())
}

func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		earlier := make([]chatEntry, 0, len(msg)+len(m.entries))
		for _, pm := range msg {
			earlier = append(earlier, chatEntry{sender: pm.Sender, text: pm.Content, at: pm.CreatedAt})
		}
		m.entries = append(earlier, m.entries...)
		m.historyLoaded = true
		m.refreshTranscript()
		return m, nil

	case advisorReplyMsg:
		m.entries = append(m.entries, chatEntry{sender: domain.SenderAssistant, text: string(msg), at: time.Now()})
		m.waiting = false
		m.err = nil
		m.refreshTranscript()
		return m, nil

	case advisorErrMsg:
		m.waiting = false
		m.err = msg.err
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyEsc:
			m.input.SetValue("")
			m.err = nil
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	if m.waiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) submit() (ChatModel, tea.Cmd) {
	if m.waiting || !m.canChat() {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.entries = append(m.entries, chatEntry{sender: domain.SenderUser, text: text, at: time.Now()})
	m.input.SetValue("")
	m.waiting = true
	m.err = nil
	m.refreshTranscript()
	return m, tea.Batch(m.askAdvisorCmd(text), m.spinner.Tick)
}

func (m ChatModel) View() string {
	header := HeaderStyle.Render("  Chat with Portfolio Advisor")
	switch {
	case m.services.Advisor == nil:
		return lipgloss.JoinVertical(lipgloss.Left, "", header, "",
			SubtextStyle.Render("  Advisor not available. Set OPENAI_API_KEY to enable."))
	case !m.services.HasPortfolio():
		return lipgloss.JoinVertical(lipgloss.Left, "", header, "",
			SubtextStyle.Render("  Link a portfolio to start chatting."))
	}

	divider := SubtextStyle.Render(rule(m.width))
	sections := []string{header, divider, m.viewport.View(), divider}

	if m.waiting {
		sections = append(sections, fmt.Sprintf("  %s Advisor is typing...", m.spinner.View()))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}
	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}
	counter := SubtextStyle.Render(fmt.Sprintf("%d/%d", len([]rune(m.input.Value())), advisor.MaxMessageChars))
	sections = append(sections, "  "+m.input.View()+"  "+counter)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions and resizes the transcript.
func (m *ChatModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = max(10, w-18)
	m.viewport.Width = max(10, w-2)
	m.viewport.Height = max(3, h-chatChromeLines)
	m.resizeMarkdown(max(20, m.viewport.Width-chatIndent-1))
	m.refreshTranscript()
}

func (m *ChatModel) Focus() { m.input.Focus() }

func (m *ChatModel) Blur() { m.input.Blur() }

// IsWaiting reports an unanswered question.
func (m ChatModel) IsWaiting() bool { return m.waiting }

func (m ChatModel) MessageCount() int { return len(m.entries) }

func (m *ChatModel) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m ChatModel) renderTranscript() string {
	if !m.historyLoaded {
		return SubtextStyle.Render("  Loading earlier messages...")
	}
	if len(m.entries) == 0 {
		return SubtextStyle.Render("  Ask anything about your allocation or the ETFs in it.")
	}

	body := lipgloss.NewStyle().Width(max(20, m.viewport.Width-chatIndent-1))
	pad := strings.Repeat(" ", chatIndent)

	var lines []string
	for _, e := range m.entries {
		stamp := SubtextStyle.Render(e.at.Local().Format("15:04"))
		if e.sender == domain.SenderUser {
			lines = append(lines, fmt.Sprintf("  %s  %s %s", stamp, UserMsgStyle.Render("You:"), e.text))
		} else {
			lines = append(lines, fmt.Sprintf("  %s  %s", stamp, AssistantMsgStyle.Render("Advisor:")))
			for _, line := range strings.Split(body.Render(m.renderReply(e.text)), "\n") {
				lines = append(lines, pad+line)
			}
		}
		lines = append(lines, "")
	}
	if m.waiting {
		lines = append(lines, "  "+SubtextStyle.Render("Advisor is thinking..."))
	}
	return strings.Join(lines, "\n")
}

func (m ChatModel) fetchHistoryCmd() tea.Cmd {
	if !m.canChat() {
		return nil
	}
	adv, id := m.services.Advisor, m.services.PortfolioID
	return func() tea.Msg {
		history, err := adv.History(context.Background(), id, 0)
		if err != nil {
			return historyMsg(nil)
		}
		return historyMsg(history)
	}
}

func (m ChatModel) askAdvisorCmd(question string) tea.Cmd {
	adv, id := m.services.Advisor, m.services.PortfolioID
	return func() tea.Msg {
		if adv == nil {
			return advisorErrMsg{err: errors.New("advisor is not configured on this server")}
		}
		reply, err := adv.Ask(context.Background(), id, question)
		if err != nil {
			return advisorErrMsg{err: err}
		}
		return advisorReplyMsg(reply)
	}
}
