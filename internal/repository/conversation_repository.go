package repository

import (
	"context"
	"time"

	"portfolio-advisor/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ConversationRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewConversationRepository(pool PgxPool, tracer trace.Tracer) *ConversationRepository {
	return &ConversationRepository{pool: pool, tracer: tracer}
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, portfolioID string, sender domain.Sender, content string) error {
	_, span := r.tracer.Start(ctx, "conversation-repo.append-message")
	defer span.End()
	span.SetAttributes(attribute.String("portfolio.id", portfolioID), attribute.String("sender", string(sender)))

	_, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio_messages (portfolio_id, sender, content) VALUES ($1, $2, $3)`,
		portfolioID, string(sender), content,
	)
	return err
}

// RecentMessages returns up to limit of the newest messages, oldest first.
func (r *ConversationRepository) RecentMessages(ctx context.Context, portfolioID string, limit int) ([]domain.PortfolioMessage, error) {
	_, span := r.tracer.Start(ctx, "conversation-repo.recent-messages")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, sender, content, created_at
		 FROM portfolio_messages
		 WHERE portfolio_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		portfolioID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.PortfolioMessage{}
	for rows.Next() {
		m := domain.PortfolioMessage{PortfolioID: portfolioID}
		var sender string
		if err := rows.Scan(&m.ID, &sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Sender = domain.Sender(sender)
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *ConversationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	_, span := r.tracer.Start(ctx, "conversation-repo.delete-older-than")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `DELETE FROM portfolio_messages WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
