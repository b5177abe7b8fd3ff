package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the request payload for creating an account.
// Balances cannot be set; they start at zero and follow the ledger.
type CreateAccountRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	Currency    string `json:"currency" binding:"omitempty,currency"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a new account for the scoped team
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Missing team scope"
// @Failure     404 {object} ErrorResponse "Team not found"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), teamID, req.Name, req.Description, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetTeamAccounts handles listing the team's accounts
// @Summary     List accounts
// @Tags        accounts
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Account] "Paginated accounts"
// @Router      /accounts [get]
func (h *AccountHandler) GetTeamAccounts(c *gin.Context) {
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

	result, err := h.accountService.GetTeamAccounts(c.Request.Context(), teamID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID handles the retrieval of a specific account
// @Summary     Get account by ID
// @Tags        accounts
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Account details"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), teamID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount handles soft-deleting an unused account
// @Summary     Delete an account
// @Tags        accounts
// @Param       X-Team-ID header string true "Team ID"
// @Param       id path string true "Account ID"
// @Success     204 "Account deleted"
// @Failure     409 {object} ErrorResponse "Account still used by transactions"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), teamID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
