package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/services"
)

// TeamHandler handles team-related requests.
type TeamHandler struct {
	teamService services.TeamServicer
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService services.TeamServicer) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// CreateTeamRequest represents the request payload for creating a team.
type CreateTeamRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Currency string `json:"currency" binding:"omitempty,currency"`
}

// CreateTeam handles the creation of a new team.
// @Summary     Create a team
// @Tags        teams
// @Accept      json
// @Produce     json
// @Param       request body CreateTeamRequest true "Team details"
// @Success     201 {object} models.Team "Team created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), req.Name, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"team": team})
}

// GetCurrentTeam returns the team the request is scoped to.
// @Summary     Get the scoped team
// @Tags        teams
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Success     200 {object} models.Team "Team details"
// @Failure     404 {object} ErrorResponse "Team not found"
// @Router      /teams/current [get]
func (h *TeamHandler) GetCurrentTeam(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	team, err := h.teamService.GetTeamByID(c.Request.Context(), teamID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"team": team})
}
