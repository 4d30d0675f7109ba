package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-advisor/internal/domain"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

const testID = "0b7e7d2c-3f58-4f0e-a1c4-6a0d0a4c2d11"

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func testPortfolio() *domain.Portfolio {
	return &domain.Portfolio{
		ID: testID,
		Profile: domain.InvestorProfile{
			RiskTolerance: 63.3, RiskCapacity: 75, TimeHorizon: 73, Experience: 55,
			CashPreference: domain.CashPreferenceMedium,
			Goals:          []string{domain.GoalRetirement},
		},
		Allocation: domain.AssetAllocation{
			Equity: 57.5, Bonds: 28.5, Cash: 6.5, Other: 7.5, HoldingsCount: 5,
			Audit: domain.AllocationAudit{RiskScore: 60, Tier: "growth", CapApplied: true, EquityCap: 75,
				Adjustments: []domain.Adjustment{{Name: "horizon"}}},
		},
	}
}

func newTestAdvisor(llm LLMClient, store ConversationStore) *AdvisorService {
	return NewAdvisorService(testTracer, llm, &stubPortfolios{p: testPortfolio()}, store, 10)
}

func TestAskSendsHistoryAndStoresExchange(t *testing.T) {
	llm := &stubLLM{reply: "  Bonds soften drawdowns.  "}
	store := &stubStore{messages: []domain.PortfolioMessage{
		{Sender: domain.SenderUser, Content: "hi"},
		{Sender: domain.SenderAssistant, Content: "hello"},
	}}
	adv := newTestAdvisor(llm, store)

	reply, err := adv.Ask(context.Background(), testID, "  Why so many bonds?  ")
	require.NoError(t, err)
	assert.Equal(t, "Bonds soften drawdowns.", reply)

	require.Len(t, llm.got, 4)
	assert.Equal(t, RoleSystem, llm.got[0].Role)
	assert.Contains(t, llm.got[0].Content, "tier growth")
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, llm.got[1])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "hello"}, llm.got[2])
	assert.Equal(t, Message{Role: RoleUser, Content: "Why so many bonds?"}, llm.got[3])
	assert.Equal(t, 10, store.lastLimit)

	require.Len(t, store.appended, 2)
	assert.Equal(t, domain.SenderUser, store.appended[0].Sender)
	assert.Equal(t, "Why so many bonds?", store.appended[0].Content)
	assert.Equal(t, domain.SenderAssistant, store.appended[1].Sender)
}

func TestAskValidatesMessage(t *testing.T) {
	adv := newTestAdvisor(&stubLLM{}, &stubStore{})
	var verr *domain.ValidationError

	_, err := adv.Ask(context.Background(), testID, "   ")
	require.True(t, errors.As(err, &verr))

	_, err = adv.Ask(context.Background(), testID, strings.Repeat("é", MaxMessageChars+1))
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Error(), "limit is 2000")

	_, err = adv.Ask(context.Background(), testID, strings.Repeat("é", MaxMessageChars))
	assert.NoError(t, err)
}

func TestAskWithoutLLMIsUnavailable(t *testing.T) {
	adv := NewAdvisorService(testTracer, nil, &stubPortfolios{p: testPortfolio()}, &stubStore{}, 10)

	_, err := adv.Ask(context.Background(), testID, "hello")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.False(t, adv.Enabled())
}

func TestAskUnknownPortfolio(t *testing.T) {
	adv := NewAdvisorService(testTracer, &stubLLM{}, &stubPortfolios{}, &stubStore{}, 10)

	_, err := adv.Ask(context.Background(), testID, "hello")
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
}

func TestAskLLMFailureStoresNothing(t *testing.T) {
	store := &stubStore{}
	adv := newTestAdvisor(&stubLLM{err: errors.New("rate limited")}, store)

	_, err := adv.Ask(context.Background(), testID, "hello")
	require.Error(t, err)
	assert.Empty(t, store.appended)
}

func TestHistoryClampsLimit(t *testing.T) {
	store := &stubStore{}
	adv := newTestAdvisor(&stubLLM{}, store)

	_, err := adv.History(context.Background(), testID, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, store.lastLimit)

	_, err = adv.History(context.Background(), testID, 5000)
	require.NoError(t, err)
	assert.Equal(t, maxHistoryLimit, store.lastLimit)
}

func TestSystemPromptDescribesPortfolio(t *testing.T) {
	prompt := SystemPrompt(testPortfolio())

	assert.Contains(t, prompt, "equity 57.50%, bonds 28.50%, cash 6.50%, other 7.50%")
	assert.Contains(t, prompt, "goals: retirement")
	assert.Contains(t, prompt, "interests: none")
	assert.Contains(t, prompt, "equity capped at 75.0%")
	assert.Contains(t, prompt, "adjustments applied: horizon")
}

func TestOpenAIClientChatCompletion(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Diversify."}}]}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "gpt-test", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := client.ChatCompletion(ctx, []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleAssistant, Content: "prev"},
		{Role: RoleUser, Content: "q"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Diversify.", reply)
	assert.Equal(t, "gpt-test", body.Model)
	require.Len(t, body.Messages, 3)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "assistant", body.Messages[1].Role)
	assert.Equal(t, "q", body.Messages[2].Content)
}

type stubLLM struct {
	reply string
	err   error
	got   []Message
}

func (s *stubLLM) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	s.got = messages
	return s.reply, s.err
}

type stubPortfolios struct {
	p *domain.Portfolio
}

func (s *stubPortfolios) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	if s.p == nil || s.p.ID != id {
		return nil, domain.ErrPortfolioNotFound
	}
	return s.p, nil
}

type stubStore struct {
	messages  []domain.PortfolioMessage
	appended  []domain.PortfolioMessage
	lastLimit int
}

func (s *stubStore) AppendMessage(ctx context.Context, portfolioID string, sender domain.Sender, content string) error {
	s.appended = append(s.appended, domain.PortfolioMessage{PortfolioID: portfolioID, Sender: sender, Content: content})
	return nil
}

func (s *stubStore) RecentMessages(ctx context.Context, portfolioID string, limit int) ([]domain.PortfolioMessage, error) {
	s.lastLimit = limit
	return s.messages, nil
}
