package handler

import (
	"errors"
	"net/http"

	"portfolio-advisor/internal/advisor"
	"portfolio-advisor/internal/catalog"
	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer           trace.Tracer
	portfolioService *service.PortfolioService
	advisorService   *advisor.AdvisorService
	catalog          *catalog.Catalog
}

func New(
	tracer trace.Tracer,
	portfolioService *service.PortfolioService,
	advisorService *advisor.AdvisorService,
	etfCatalog *catalog.Catalog,
) *Handler {
	return &Handler{
		tracer:           tracer,
		portfolioService: portfolioService,
		advisorService:   advisorService,
		catalog:          etfCatalog,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/questionnaire", h.GetQuestionnaire)
	api.POST("/questionnaire", h.SubmitQuestionnaire)
	api.POST("/profile/preview", h.PreviewProfile)

	api.GET("/portfolios/:id", h.GetPortfolio)
	api.GET("/portfolios/:id/allocation", h.GetAllocation)
	api.GET("/portfolios/:id/etfs", h.GetRecommendedETFs)
	api.GET("/portfolios/:id/messages", h.GetMessages)
	api.POST("/portfolios/:id/messages", h.PostMessage)

	api.GET("/etfs", h.ListETFs)
	api.GET("/etfs/compare", h.CompareETFs)
	api.GET("/etfs/:ticker", h.GetETF)
}

// Health godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "problems": verr.Problems})
	case errors.Is(err, domain.ErrPortfolioNotFound), errors.Is(err, domain.ErrETFNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
