package handler

import (
	"net/http"
	"strconv"
	"strings"

	"portfolio-advisor/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListETFs godoc
// @Summary      List catalog ETFs
// @Tags         etfs
// @Produce      json
// @Param        asset_class  query  string  false  "equity, bonds, cash or other"
// @Param        q            query  string  false  "Matches ticker, name, category or tag"
// @Param        limit        query  int     false  "Number of ETFs (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/etfs [get]
func (h *Handler) ListETFs(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.list-etfs")
	defer span.End()

	filter := domain.ETFFilter{
		AssetClass: domain.AssetClass(strings.ToLower(strings.TrimSpace(c.Query("asset_class")))),
		Query:      c.Query("q"),
	}
	if filter.AssetClass != "" && !filter.AssetClass.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                   "unsupported asset class: " + string(filter.AssetClass),
			"supported_asset_classes": domain.AssetClasses,
		})
		return
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		filter.Limit = n
	}

	c.JSON(http.StatusOK, gin.H{"etfs": h.catalog.List(filter)})
}

// GetETF godoc
// @Summary      Get one ETF
// @Tags         etfs
// @Produce      json
// @Param        ticker  path  string  true  "Ticker"
// @Success      200  {object}  domain.ETF
// @Failure      404  {object}  map[string]string
// @Router       /api/etfs/{ticker} [get]
func (h *Handler) GetETF(c *gin.Context) {
	etf, err := h.catalog.Get(c.Param("ticker"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, etf)
}

// CompareETFs godoc
// @Summary      Compare ETFs side by side
// @Tags         etfs
// @Produce      json
// @Param        tickers  query  string  true  "Comma separated tickers (2 to 4)"
// @Success      200  {object}  domain.ETFComparison
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/etfs/compare [get]
func (h *Handler) CompareETFs(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.compare-etfs")
	defer span.End()

	cmp, err := h.catalog.Compare(strings.Split(c.Query("tickers"), ","))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}
