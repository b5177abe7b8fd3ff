package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
)

// MerchantHandler handles merchant-related requests.
type MerchantHandler struct {
	merchantService services.MerchantServicer
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(merchantService services.MerchantServicer) *MerchantHandler {
	return &MerchantHandler{merchantService: merchantService}
}

// CreateMerchantRequest represents the request payload for creating a merchant.
type CreateMerchantRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Website string `json:"website" binding:"omitempty,url,max=255"`
}

// CreateMerchant handles the creation of a new merchant
// @Summary     Create a merchant
// @Tags        merchants
// @Accept      json
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       request body CreateMerchantRequest true "Merchant details"
// @Success     201 {object} models.Merchant "Merchant created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /merchants [post]
func (h *MerchantHandler) CreateMerchant(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	merchant, err := h.merchantService.CreateMerchant(c.Request.Context(), teamID, req.Name, req.Website)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"merchant": merchant})
}

// GetTeamMerchants handles listing the team's merchants
// @Summary     List merchants
// @Tags        merchants
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Success     200 {object} pagination.PageResponse[models.Merchant] "Paginated merchants"
// @Router      /merchants [get]
func (h *MerchantHandler) GetTeamMerchants(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.merchantService.GetTeamMerchants(c.Request.Context(), teamID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMerchantByID handles the retrieval of a specific merchant
// @Summary     Get merchant by ID
// @Tags        merchants
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       id path string true "Merchant ID"
// @Success     200 {object} models.Merchant "Merchant details"
// @Failure     404 {object} ErrorResponse "Merchant not found"
// @Router      /merchants/{id} [get]
func (h *MerchantHandler) GetMerchantByID(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	merchantID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	merchant, err := h.merchantService.GetMerchantByID(c.Request.Context(), teamID, merchantID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"merchant": merchant})
}

// DeleteMerchant handles soft-deleting an unused merchant
// @Summary     Delete a merchant
// @Tags        merchants
// @Param       X-Team-ID header string true "Team ID"
// @Param       id path string true "Merchant ID"
// @Success     204 "Merchant deleted"
// @Failure     409 {object} ErrorResponse "Merchant still used by transactions"
// @Router      /merchants/{id} [delete]
func (h *MerchantHandler) DeleteMerchant(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	merchantID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.merchantService.DeleteMerchant(c.Request.Context(), teamID, merchantID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
