package handler

import (
	"net/http"

	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/questionnaire"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type answersRequest struct {
	Answers questionnaire.Answers `json:"answers" binding:"required"`
}

type previewResponse struct {
	Profile    domain.InvestorProfile `json:"profile"`
	Allocation domain.AssetAllocation `json:"allocation"`
}

// GetQuestionnaire godoc
// @Summary      Get the risk questionnaire
// @Description  Returns every question with its answer options
// @Tags         questionnaire
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/questionnaire [get]
func (h *Handler) GetQuestionnaire(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": questionnaire.Questions()})
}

// SubmitQuestionnaire godoc
// @Summary      Submit questionnaire answers
// @Description  Scores the answers, computes an allocation and stores the portfolio
// @Tags         questionnaire
// @Accept       json
// @Produce      json
// @Param        body  body  answersRequest  true  "Answers keyed by question id"
// @Success      201  {object}  domain.Portfolio
// @Failure      400  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/questionnaire [post]
func (h *Handler) SubmitQuestionnaire(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.submit-questionnaire")
	defer span.End()

	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badAnswersBody(c, err)
		return
	}

	p, err := h.portfolioService.SubmitQuestionnaire(ctx, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	span.SetAttributes(attribute.String("portfolio.id", p.ID))
	c.JSON(http.StatusCreated, p)
}

// PreviewProfile godoc
// @Summary      Preview profile and allocation
// @Description  Scores the answers and computes an allocation without storing anything
// @Tags         questionnaire
// @Accept       json
// @Produce      json
// @Param        body  body  answersRequest  true  "Answers keyed by question id"
// @Success      200  {object}  previewResponse
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/profile/preview [post]
func (h *Handler) PreviewProfile(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.preview-profile")
	defer span.End()

	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badAnswersBody(c, err)
		return
	}

	profile, alloc, err := h.portfolioService.Preview(ctx, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, previewResponse{Profile: profile, Allocation: alloc})
}

func badAnswersBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  `body must look like {"answers": {"<question id>": ["<code>", ...]}}`,
		"detail": err.Error(),
	})
}
