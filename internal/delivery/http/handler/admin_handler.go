package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/usecase/export"
	"github.com/gdugdh24/match-matrix-backend/internal/usecase/matching"
	"github.com/gdugdh24/match-matrix-backend/internal/usecase/registration"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the operator dashboard. The routes are unauthenticated;
// deployments put them behind the ingress.
type AdminHandler struct {
	engine              *matching.Engine
	registrationUseCase *registration.RegistrationUseCase
	exportUseCase       *export.ExportUseCase
}

func NewAdminHandler(
	engine *matching.Engine,
	registrationUseCase *registration.RegistrationUseCase,
	exportUseCase *export.ExportUseCase,
) *AdminHandler {
	return &AdminHandler{
		engine:              engine,
		registrationUseCase: registrationUseCase,
		exportUseCase:       exportUseCase,
	}
}

type ParticipantsResponse struct {
	Participants []*matching.ParticipantView `json:"participants"`
	Total        int                         `json:"total"`
}

type MatchesResponse struct {
	Matches []*matching.MatchView `json:"matches"`
	Total   int                   `json:"total"`
}

type WhitelistEntriesResponse struct {
	Entries []*domain.WhitelistEntry `json:"entries"`
	Total   int                      `json:"total"`
}

// ListParticipants handles GET /admin/participants
// @Summary List participants
// @Tags admin
// @Produce json
// @Success 200 {object} ParticipantsResponse
// @Router /admin/participants [get]
func (h *AdminHandler) ListParticipants(c *gin.Context) {
	participants, err := h.engine.ListParticipants(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParticipantsResponse{
		Participants: participants,
		Total:        len(participants),
	})
}

// ListMatches handles GET /admin/matches
// @Summary List matches
// @Tags admin
// @Produce json
// @Success 200 {object} MatchesResponse
// @Router /admin/matches [get]
func (h *AdminHandler) ListMatches(c *gin.Context) {
	matches, err := h.engine.ListMatches(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MatchesResponse{
		Matches: matches,
		Total:   len(matches),
	})
}

// GenerateMatches handles POST /admin/generate-matches
// @Summary Run matching
// @Description Replace every unlocked match with a fresh pairing of all participants
// @Tags admin
// @Produce json
// @Success 200 {object} matching.GenerateStats
// @Failure 409 {object} ErrorResponse
// @Router /admin/generate-matches [post]
func (h *AdminHandler) GenerateMatches(c *gin.Context) {
	stats, err := h.engine.GenerateMatches(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportMatches handles GET /admin/matches/export
// @Summary Export matches
// @Description Download matches and unmatched participants as an xlsx workbook
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} ErrorResponse
// @Router /admin/matches/export [get]
func (h *AdminHandler) ExportMatches(c *gin.Context) {
	// buffered so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := h.exportUseCase.WriteMatches(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exportUseCase.FileName()))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// ListWhitelist handles GET /admin/whitelist
// @Summary List whitelist
// @Tags admin
// @Produce json
// @Success 200 {object} WhitelistEntriesResponse
// @Router /admin/whitelist [get]
func (h *AdminHandler) ListWhitelist(c *gin.Context) {
	entries, err := h.registrationUseCase.ListWhitelist(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, WhitelistEntriesResponse{
		Entries: entries,
		Total:   len(entries),
	})
}

// AddToWhitelist handles POST /admin/whitelist
// @Summary Add emails to whitelist
// @Description Already listed emails are skipped and not counted
// @Tags admin
// @Accept json
// @Produce json
// @Param request body registration.WhitelistRequest true "Emails"
// @Success 200 {object} registration.WhitelistResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/whitelist [post]
func (h *AdminHandler) AddToWhitelist(c *gin.Context) {
	var req registration.WhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.registrationUseCase.AddToWhitelist(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
