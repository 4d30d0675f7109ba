package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type askRequest struct {
	Message string `json:"message"`
}

// GetMessages godoc
// @Summary      Get advisor chat history
// @Tags         chat
// @Produce      json
// @Param        id     path   string  true   "Portfolio ID"
// @Param        limit  query  int     false  "Number of messages (max 200)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/portfolios/{id}/messages [get]
func (h *Handler) GetMessages(c *gin.Context) {
	if h.advisorService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-messages")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	messages, err := h.advisorService.History(ctx, c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// PostMessage godoc
// @Summary      Ask the advisor about a portfolio
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        id    path  string      true  "Portfolio ID"
// @Param        body  body  askRequest  true  "Question"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/portfolios/{id}/messages [post]
func (h *Handler) PostMessage(c *gin.Context) {
	if h.advisorService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-message")
	defer span.End()

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON object with a message"})
		return
	}

	reply, err := h.advisorService.Ask(ctx, c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
