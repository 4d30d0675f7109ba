package bot

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ChatLinks remembers which portfolio each chat is working with so commands
// and free text can omit the portfolio id.
type ChatLinks struct {
	mu    sync.RWMutex
	links map[int64]string
}

func NewChatLinks() *ChatLinks {
	return &ChatLinks{links: make(map[int64]string)}
}

// Link binds chatID to portfolioID. It reports false when the chat was
// already linked to the same portfolio.
func (l *ChatLinks) Link(chatID int64, portfolioID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.links[chatID] == portfolioID {
		return false
	}
	l.links[chatID] = portfolioID
	return true
}

func (l *ChatLinks) Unlink(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.links[chatID]; !exists {
		return false
	}
	delete(l.links, chatID)
	return true
}

func (l *ChatLinks) PortfolioFor(chatID int64) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.links[chatID]
	return id, ok
}

func (l *ChatLinks) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.links)
}

// resolvePortfolio picks the portfolio id from the first argument when it
// looks like one, otherwise from the chat link. The remaining arguments are
// returned untouched.
func (l *ChatLinks) resolvePortfolio(chatID int64, args []string) (string, []string, error) {
	if len(args) > 0 {
		if _, err := uuid.Parse(strings.TrimSpace(args[0])); err == nil {
			return strings.ToLower(strings.TrimSpace(args[0])), args[1:], nil
		}
	}
	if l != nil {
		if id, ok := l.PortfolioFor(chatID); ok {
			return id, args, nil
		}
	}
	return "", args, fmt.Errorf("no portfolio id given and none linked")
}

func parseLinkArgs(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one portfolio id")
	}
	id := strings.TrimSpace(args[0])
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid portfolio id")
	}
	return strings.ToLower(id), nil
}
