package handler

import (
	"net/http"

	"github.com/gdugdh24/match-matrix-backend/internal/usecase/registration"
	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	registrationUseCase *registration.RegistrationUseCase
}

func NewParticipantHandler(registrationUseCase *registration.RegistrationUseCase) *ParticipantHandler {
	return &ParticipantHandler{
		registrationUseCase: registrationUseCase,
	}
}

// Verify handles POST /participants/verify
// @Summary Verify email
// @Description Report whether an email is already registered
// @Tags participants
// @Accept json
// @Produce json
// @Param request body registration.VerifyRequest true "Email"
// @Success 200 {object} registration.VerifyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /participants/verify [post]
func (h *ParticipantHandler) Verify(c *gin.Context) {
	var req registration.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.registrationUseCase.Verify(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Register handles POST /participants/register
// @Summary Register participant
// @Description Create a participant, or merge the profile into the existing one for this email
// @Tags participants
// @Accept json
// @Produce json
// @Param request body registration.ProfileRequest true "Profile"
// @Success 201 {object} registration.RegisterResponse
// @Success 200 {object} registration.RegisterResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /participants/register [post]
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req registration.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.registrationUseCase.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// RegisterDuo handles POST /participants/register-duo
// @Summary Register duo
// @Description Register two new participants together as a fixed pair
// @Tags participants
// @Accept json
// @Produce json
// @Param request body registration.DuoRequest true "Both profiles"
// @Success 201 {object} registration.DuoResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /participants/register-duo [post]
func (h *ParticipantHandler) RegisterDuo(c *gin.Context) {
	var req registration.DuoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.registrationUseCase.RegisterDuo(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
