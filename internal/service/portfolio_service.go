package service

import (
	"context"
	"fmt"
	"time"

	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/questionnaire"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PortfolioRepository interface {
	Create(ctx context.Context, p *domain.Portfolio) error
	Get(ctx context.Context, id string) (*domain.Portfolio, error)
}

type AllocationCache interface {
	Get(ctx context.Context, portfolioID string) (domain.AssetAllocation, bool, error)
	Set(ctx context.Context, portfolioID string, alloc domain.AssetAllocation) error
}

type AllocationEngine interface {
	Allocate(profile domain.InvestorProfile) (domain.AssetAllocation, error)
}

type ETFRecommender interface {
	Recommend(alloc domain.AssetAllocation, interests []string) []domain.RecommendedHolding
}

type PortfolioService struct {
	tracer      trace.Tracer
	repo        PortfolioRepository
	cache       AllocationCache
	engine      AllocationEngine
	recommender ETFRecommender
	newID       func() string
	now         func() time.Time
	logger      zerolog.Logger
}

func NewPortfolioService(
	tracer trace.Tracer,
	repo PortfolioRepository,
	cache AllocationCache,
	engine AllocationEngine,
	recommender ETFRecommender,
) *PortfolioService {
	return &PortfolioService{
		tracer:      tracer,
		repo:        repo,
		cache:       cache,
		engine:      engine,
		recommender: recommender,
		newID:       func() string { return uuid.NewString() },
		now:         time.Now,
		logger:      log.With().Str("component", "portfolio-service").Logger(),
	}
}

// Preview scores the answers and computes an allocation without storing it.
func (s *PortfolioService) Preview(ctx context.Context, answers questionnaire.Answers) (domain.InvestorProfile, domain.AssetAllocation, error) {
	_, span := s.tracer.Start(ctx, "portfolio-service.preview")
	defer span.End()

	profile, err := questionnaire.BuildProfile(answers)
	if err != nil {
		return domain.InvestorProfile{}, domain.AssetAllocation{}, err
	}
	alloc, err := s.engine.Allocate(profile)
	if err != nil {
		return domain.InvestorProfile{}, domain.AssetAllocation{}, fmt.Errorf("allocate: %w", err)
	}
	return profile, alloc, nil
}

func (s *PortfolioService) SubmitQuestionnaire(ctx context.Context, answers questionnaire.Answers) (*domain.Portfolio, error) {
	ctx, span := s.tracer.Start(ctx, "portfolio-service.submit-questionnaire")
	defer span.End()

	if s.repo == nil {
		return nil, fmt.Errorf("portfolio storage: %w", domain.ErrUnavailable)
	}

	profile, alloc, err := s.Preview(ctx, answers)
	if err != nil {
		return nil, err
	}

	p := &domain.Portfolio{
		ID:         s.newID(),
		Answers:    answers.Normalize(),
		Profile:    profile,
		Allocation: alloc,
		CreatedAt:  s.now().UTC(),
	}
	span.SetAttributes(attribute.String("portfolio.id", p.ID), attribute.String("allocation.tier", alloc.Audit.Tier))

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("store portfolio: %w", err)
	}
	if err := s.cache.Set(ctx, p.ID, alloc); err != nil {
		s.logger.Warn().Err(err).Str("portfolio_id", p.ID).Msg("cache allocation failed")
	}

	s.logger.Info().Str("portfolio_id", p.ID).Str("tier", alloc.Audit.Tier).Float64("risk_score", alloc.Audit.RiskScore).Msg("portfolio created")
	return p, nil
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	ctx, span := s.tracer.Start(ctx, "portfolio-service.get-portfolio")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrPortfolioNotFound
	}
	if s.repo == nil {
		return nil, fmt.Errorf("portfolio storage: %w", domain.ErrUnavailable)
	}
	return s.repo.Get(ctx, id)
}

// GetAllocation serves the allocation from cache, falling back to the stored
// portfolio and refilling the cache on a miss.
func (s *PortfolioService) GetAllocation(ctx context.Context, id string) (domain.AssetAllocation, error) {
	ctx, span := s.tracer.Start(ctx, "portfolio-service.get-allocation")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return domain.AssetAllocation{}, domain.ErrPortfolioNotFound
	}

	alloc, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("portfolio_id", id).Msg("read cached allocation failed")
	}
	if ok && alloc.IsNormalized() {
		return alloc, nil
	}
	if ok {
		s.logger.Warn().Str("portfolio_id", id).Float64("total", alloc.Total()).Msg("cached allocation does not sum to 100, reloading")
	}

	p, err := s.GetPortfolio(ctx, id)
	if err != nil {
		return domain.AssetAllocation{}, err
	}
	if err := s.cache.Set(ctx, id, p.Allocation); err != nil {
		s.logger.Warn().Err(err).Str("portfolio_id", id).Msg("cache allocation failed")
	}
	return p.Allocation, nil
}

func (s *PortfolioService) RecommendETFs(ctx context.Context, id string) ([]domain.RecommendedHolding, error) {
	ctx, span := s.tracer.Start(ctx, "portfolio-service.recommend-etfs")
	defer span.End()

	p, err := s.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recommender.Recommend(p.Allocation, p.Profile.Interests), nil
}
