package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-advisor/internal/domain"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

const maxReplyChars = 4000

type PortfolioQuerier interface {
	GetAllocation(ctx context.Context, id string) (domain.AssetAllocation, error)
	RecommendETFs(ctx context.Context, id string) ([]domain.RecommendedHolding, error)
}

type ETFLookup interface {
	Get(ticker string) (domain.ETF, error)
}

type Advisor interface {
	Ask(ctx context.Context, portfolioID, message string) (string, error)
}

const helpText = `Portfolio advisor commands:
/link <portfolio-id> - use this portfolio by default in this chat
/unlink - forget the linked portfolio
/allocation [portfolio-id] - asset class split
/holdings [portfolio-id] - recommended ETFs
/etf <ticker> - ETF facts
/ask [portfolio-id] <question> - ask the advisor
Plain messages go to the advisor for the linked portfolio.`

// StartTelegramBot starts long polling in the background and returns the chat
// link registry. It returns nil when token is empty.
func StartTelegramBot(token string, portfolios PortfolioQuerier, etfs ETFLookup, advisorService Advisor) (*ChatLinks, error) {
	logger := log.With().Str("component", "telegram").Logger()
	if strings.TrimSpace(token) == "" {
		logger.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	links := NewChatLinks()

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	help := func(c tele.Context) error { return c.Send(helpText) }
	b.Handle("/start", help)
	b.Handle("/help", help)

	b.Handle("/link", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}
		id, err := parseLinkArgs(c.Args())
		if err != nil {
			return c.Send("Usage: /link <portfolio-id>")
		}
		if portfolios != nil {
			if _, err := portfolios.GetAllocation(context.Background(), id); err != nil {
				return c.Send(describeError(err))
			}
		}
		if links.Link(chat.ID, id) {
			return c.Send(fmt.Sprintf("Linked portfolio %s to this chat.", id))
		}
		return c.Send("This chat is already linked to that portfolio.")
	})

	b.Handle("/unlink", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}
		if links.Unlink(chat.ID) {
			return c.Send("Portfolio unlinked.")
		}
		return c.Send("No portfolio is linked to this chat.")
	})

	b.Handle("/allocation", func(c tele.Context) error {
		if portfolios == nil {
			return c.Send("Portfolio storage unavailable")
		}
		id, _, err := links.resolvePortfolio(chatID(c), c.Args())
		if err != nil {
			return c.Send("Usage: /allocation <portfolio-id>")
		}
		alloc, err := portfolios.GetAllocation(context.Background(), id)
		if err != nil {
			return c.Send(describeError(err))
		}
		return c.Send(formatAllocation(alloc))
	})

	b.Handle("/holdings", func(c tele.Context) error {
		if portfolios == nil {
			return c.Send("Portfolio storage unavailable")
		}
		id, _, err := links.resolvePortfolio(chatID(c), c.Args())
		if err != nil {
			return c.Send("Usage: /holdings <portfolio-id>")
		}
		holdings, err := portfolios.RecommendETFs(context.Background(), id)
		if err != nil {
			return c.Send(describeError(err))
		}
		return c.Send(formatHoldings(holdings))
	})

	b.Handle("/etf", func(c tele.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /etf VTI")
		}
		etf, err := etfs.Get(args[0])
		if err != nil {
			return c.Send(describeError(err))
		}
		return c.Send(formatETF(etf))
	})

	b.Handle("/ask", func(c tele.Context) error {
		if advisorService == nil {
			return c.Send("Advisor not configured. Set OPENAI_API_KEY to enable.")
		}
		id, rest, err := links.resolvePortfolio(chatID(c), c.Args())
		question := strings.TrimSpace(strings.Join(rest, " "))
		if err != nil || question == "" {
			return c.Send("Usage: /ask <portfolio-id> <question>\nExample: /ask 3f1c... Should I add more bonds?")
		}
		return handleAdvisorQuery(c, advisorService, id, question)
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		if advisorService == nil {
			return nil
		}
		text := strings.TrimSpace(c.Text())
		if text == "" {
			return nil
		}
		id, ok := links.PortfolioFor(chatID(c))
		if !ok {
			return c.Send("Link a portfolio first with /link <portfolio-id>.")
		}
		return handleAdvisorQuery(c, advisorService, id, text)
	})

	logger.Info().Msg("Telegram bot started")
	go b.Start()
	return links, nil
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

func handleAdvisorQuery(c tele.Context, adv Advisor, portfolioID, question string) error {
	_ = c.Notify(tele.Typing)

	reply, err := adv.Ask(context.Background(), portfolioID, question)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID(c)).Str("portfolio_id", portfolioID).Msg("advisor error")
		return c.Send(describeError(err))
	}
	return c.Send(truncateReply(reply))
}

func truncateReply(reply string) string {
	runes := []rune(reply)
	if len(runes) <= maxReplyChars {
		return reply
	}
	return string(runes[:maxReplyChars]) + "\n\n[truncated]"
}

func describeError(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, domain.ErrPortfolioNotFound):
		return "Portfolio not found."
	case errors.Is(err, domain.ErrETFNotFound):
		return "Unknown ETF ticker."
	case errors.Is(err, domain.ErrUnavailable):
		return "That feature is unavailable right now."
	default:
		return "Sorry, I'm having trouble right now. Try again later."
	}
}

func formatAllocation(a domain.AssetAllocation) string {
	lines := []string{"Allocation:"}
	for _, class := range domain.AssetClasses {
		lines = append(lines, fmt.Sprintf("%-7s %6.2f%%", class, a.Percent(class)))
	}
	lines = append(lines, fmt.Sprintf("Tier: %s (risk %.1f), %d holdings", a.Audit.Tier, a.Audit.RiskScore, a.HoldingsCount))
	if a.Audit.CapApplied {
		lines = append(lines, fmt.Sprintf("Equity capped at %.1f%%", a.Audit.EquityCap))
	}
	return strings.Join(lines, "\n")
}

func formatHoldings(holdings []domain.RecommendedHolding) string {
	if len(holdings) == 0 {
		return "No recommended holdings."
	}
	lines := make([]string, 0, len(holdings)+1)
	lines = append(lines, "Recommended ETFs:")
	for _, h := range holdings {
		lines = append(lines, fmt.Sprintf("%s %6.2f%% %s", h.ETF.Ticker, h.Weight, h.ETF.Name))
	}
	return strings.Join(lines, "\n")
}

func formatETF(etf domain.ETF) string {
	return fmt.Sprintf(
		"%s - %s\nClass: %s (%s)\nExpense ratio: %.2f%%\nAUM: $%.1fB\nHoldings: %d\nYield: %.2f%%",
		etf.Ticker, etf.Name, etf.AssetClass, etf.Category,
		etf.ExpenseRatio, etf.AUMBillions, etf.Holdings, etf.DividendYield,
	)
}
