package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPortfolio godoc
// @Summary      Get a portfolio
// @Tags         portfolios
// @Produce      json
// @Param        id  path  string  true  "Portfolio ID"
// @Success      200  {object}  domain.Portfolio
// @Failure      404  {object}  map[string]string
// @Router       /api/portfolios/{id} [get]
func (h *Handler) GetPortfolio(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-portfolio")
	defer span.End()
	span.SetAttributes(attribute.String("portfolio.id", c.Param("id")))

	p, err := h.portfolioService.GetPortfolio(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetAllocation godoc
// @Summary      Get a portfolio's allocation
// @Description  Served from cache when available
// @Tags         portfolios
// @Produce      json
// @Param        id  path  string  true  "Portfolio ID"
// @Success      200  {object}  domain.AssetAllocation
// @Failure      404  {object}  map[string]string
// @Router       /api/portfolios/{id}/allocation [get]
func (h *Handler) GetAllocation(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-allocation")
	defer span.End()

	alloc, err := h.portfolioService.GetAllocation(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alloc)
}

// GetRecommendedETFs godoc
// @Summary      Get recommended ETFs for a portfolio
// @Tags         portfolios
// @Produce      json
// @Param        id  path  string  true  "Portfolio ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/portfolios/{id}/etfs [get]
func (h *Handler) GetRecommendedETFs(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-recommended-etfs")
	defer span.End()

	holdings, err := h.portfolioService.RecommendETFs(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}
