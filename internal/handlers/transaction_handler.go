package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
	"ledgerly/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest is the payload for creating or replacing a transaction.
// Amount is signed minor units; zero is a valid amount.
type TransactionRequest struct {
	AccountID  string   `json:"account_id" binding:"required,uuid"`
	MerchantID string   `json:"merchant_id" binding:"required,uuid"`
	CategoryID string   `json:"category_id" binding:"required,uuid"`
	TagIDs     []string `json:"tag_ids" binding:"omitempty,dive,uuid"`
	Amount     int64    `json:"amount"`
	Date       *string  `json:"date"`
	Notes      string   `json:"notes" binding:"max=500"`
}

func (r TransactionRequest) toInput() (services.TransactionInput, error) {
	in := services.TransactionInput{
		AccountID:  r.AccountID,
		MerchantID: r.MerchantID,
		CategoryID: r.CategoryID,
		TagIDs:     r.TagIDs,
		Amount:     r.Amount,
		Notes:      r.Notes,
	}
	if r.Date != nil && *r.Date != "" {
		parsed, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
		}
		in.Date = parsed
	}
	return in, nil
}

// CreateTransaction handles the creation of a new ledger entry
// @Summary     Create a transaction
// @Description Record a transaction and adjust the balances of its account, merchant, category and tags
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     422 {object} ErrorResponse "Referenced record missing or owned by another team"
// @Failure     503 {object} ErrorResponse "Concurrent balance update, retry"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), teamID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction handles replacing every editable field of a transaction
// @Summary     Update a transaction
// @Description Replace a transaction; balances move from the old owners to the new ones
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       id path string true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     422 {object} ErrorResponse "Referenced record missing or owned by another team"
// @Failure     503 {object} ErrorResponse "Concurrent balance update, retry"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), teamID, transactionID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles soft-deleting a transaction
// @Summary     Delete a transaction
// @Tags        transactions
// @Param       X-Team-ID header string true "Team ID"
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), teamID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RestoreTransaction handles undoing a soft delete
// @Summary     Restore a transaction
// @Tags        transactions
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction restored"
// @Failure     409 {object} ErrorResponse "Transaction is not deleted"
// @Router      /transactions/{id}/restore [post]
func (h *TransactionHandler) RestoreTransaction(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.RestoreTransaction(c.Request.Context(), teamID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), teamID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// GetTeamTransactions handles listing the team's transactions
// @Summary     List transactions
// @Description Get a paginated list of the team's transactions with optional filters
// @Tags        transactions
// @Produce     json
// @Param       X-Team-ID       header string true  "Team ID"
// @Param       page            query  int    false "Page number (default 1)"
// @Param       page_size       query  int    false "Items per page (default 20, max 100)"
// @Param       from_date       query  string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date         query  string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       account_id      query  string false "Filter by account ID"
// @Param       merchant_id     query  string false "Filter by merchant ID"
// @Param       category_id     query  string false "Filter by category ID"
// @Param       tag_id          query  string false "Filter by tag ID"
// @Param       min_amount      query  int    false "Filter by minimum amount (minor units)"
// @Param       max_amount      query  int    false "Filter by maximum amount (minor units)"
// @Param       include_deleted query  bool   false "Include soft-deleted transactions"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTeamTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTeamTransactions(c.Request.Context(), teamID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	idFilters := []struct {
		param string
		dst   **string
	}{
		{"account_id", &filter.AccountID},
		{"merchant_id", &filter.MerchantID},
		{"category_id", &filter.CategoryID},
		{"tag_id", &filter.TagID},
	}
	for _, f := range idFilters {
		v := c.Query(f.param)
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+f.param)
		}
		*f.dst = &id
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	if v := c.Query("include_deleted"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid include_deleted")
		}
		filter.IncludeDeleted = include
	}

	return filter, nil
}
