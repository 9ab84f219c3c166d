package handler

import (
	"net/http"

	"github.com/gdugdh24/match-matrix-backend/internal/usecase/matching"
	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	engine *matching.Engine
}

func NewMatchHandler(engine *matching.Engine) *MatchHandler {
	return &MatchHandler{
		engine: engine,
	}
}

type ClaimMatchRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ClaimMatch handles POST /matches/claim
// @Summary Get or claim my match
// @Description Return the caller's match, pairing them with an unmatched participant if they have none
// @Tags matches
// @Accept json
// @Produce json
// @Param request body ClaimMatchRequest true "Email"
// @Success 200 {object} matching.MatchResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /matches/claim [post]
func (h *MatchHandler) ClaimMatch(c *gin.Context) {
	var req ClaimMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.engine.ClaimMatch(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
