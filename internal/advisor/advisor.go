package advisor

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"portfolio-advisor/internal/domain"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	MaxMessageChars = 2000
	maxHistoryLimit = 200
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

type LLMClient interface {
	ChatCompletion(ctx context.Context, messages []Message) (string, error)
}

type PortfolioReader interface {
	GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error)
}

type ConversationStore interface {
	AppendMessage(ctx context.Context, portfolioID string, sender domain.Sender, content string) error
	RecentMessages(ctx context.Context, portfolioID string, limit int) ([]domain.PortfolioMessage, error)
}

type AdvisorService struct {
	tracer     trace.Tracer
	llm        LLMClient
	portfolios PortfolioReader
	store      ConversationStore
	maxHistory int
	logger     zerolog.Logger
}

func NewAdvisorService(
	tracer trace.Tracer,
	llm LLMClient,
	portfolios PortfolioReader,
	store ConversationStore,
	maxHistory int,
) *AdvisorService {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &AdvisorService{
		tracer:     tracer,
		llm:        llm,
		portfolios: portfolios,
		store:      store,
		maxHistory: maxHistory,
		logger:     log.With().Str("component", "advisor").Logger(),
	}
}

// Ask answers a question about a portfolio. The question and the reply are
// appended to the portfolio's conversation.
func (s *AdvisorService) Ask(ctx context.Context, portfolioID, message string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.ask")
	defer span.End()
	span.SetAttributes(attribute.String("portfolio.id", portfolioID))

	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.NewValidationError("message must not be empty")
	}
	if n := utf8.RuneCountInString(message); n > MaxMessageChars {
		return "", domain.NewValidationError(fmt.Sprintf("message is %d characters, limit is %d", n, MaxMessageChars))
	}
	if s.llm == nil || s.store == nil {
		return "", fmt.Errorf("advisor: %w", domain.ErrUnavailable)
	}

	portfolio, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return "", err
	}

	history, err := s.store.RecentMessages(ctx, portfolioID, s.maxHistory)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt(portfolio)})
	for _, m := range history {
		role := RoleUser
		if m.Sender == domain.SenderAssistant {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: m.Content})
	}
	messages = append(messages, Message{Role: RoleUser, Content: message})

	reply, err := s.llm.ChatCompletion(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("llm completion: %w", err)
	}
	reply = strings.TrimSpace(reply)

	if err := s.store.AppendMessage(ctx, portfolioID, domain.SenderUser, message); err != nil {
		return "", fmt.Errorf("store question: %w", err)
	}
	if err := s.store.AppendMessage(ctx, portfolioID, domain.SenderAssistant, reply); err != nil {
		return "", fmt.Errorf("store reply: %w", err)
	}

	s.logger.Debug().Str("portfolio_id", portfolioID).Int("history", len(history)).Msg("advisor replied")
	return reply, nil
}

// History returns up to limit recent messages in chronological order.
func (s *AdvisorService) History(ctx context.Context, portfolioID string, limit int) ([]domain.PortfolioMessage, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.history")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("conversation storage: %w", domain.ErrUnavailable)
	}
	if limit <= 0 {
		limit = s.maxHistory
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if _, err := s.portfolios.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.store.RecentMessages(ctx, portfolioID, limit)
}

func (s *AdvisorService) Enabled() bool {
	return s != nil && s.llm != nil && s.store != nil
}
