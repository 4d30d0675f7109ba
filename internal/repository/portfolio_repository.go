package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"portfolio-advisor/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PortfolioRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPortfolioRepository(pool PgxPool, tracer trace.Tracer) *PortfolioRepository {
	return &PortfolioRepository{pool: pool, tracer: tracer}
}

func (r *PortfolioRepository) Create(ctx context.Context, p *domain.Portfolio) error {
	_, span := r.tracer.Start(ctx, "portfolio-repo.create")
	defer span.End()
	span.SetAttributes(attribute.String("portfolio.id", p.ID))

	answers, err := json.Marshal(p.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	profile, err := json.Marshal(p.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	allocation, err := json.Marshal(p.Allocation)
	if err != nil {
		return fmt.Errorf("encode allocation: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO portfolios (id, answers, profile, allocation, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, answers, profile, allocation, p.CreatedAt,
	)
	return err
}

func (r *PortfolioRepository) Get(ctx context.Context, id string) (*domain.Portfolio, error) {
	_, span := r.tracer.Start(ctx, "portfolio-repo.get")
	defer span.End()
	span.SetAttributes(attribute.String("portfolio.id", id))

	row := r.pool.QueryRow(ctx,
		`SELECT id, answers, profile, allocation, created_at
		 FROM portfolios
		 WHERE id = $1`,
		id,
	)

	var p domain.Portfolio
	var answers, profile, allocation []byte
	err := row.Scan(&p.ID, &answers, &profile, &allocation, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(answers, &p.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(profile, &p.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := json.Unmarshal(allocation, &p.Allocation); err != nil {
		return nil, fmt.Errorf("decode allocation: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
