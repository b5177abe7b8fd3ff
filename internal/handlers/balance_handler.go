package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/balance"
	"ledgerly/internal/services"
)

// BalanceHandler serves owner balances and the consistency audit.
type BalanceHandler struct {
	balanceService services.BalanceServicer
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceService services.BalanceServicer) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetBalance handles reading the stored balance of one owner
// @Summary     Get an owner balance
// @Tags        balances
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       type path string true "Owner type (account, merchant, category, tag)"
// @Param       id   path string true "Owner ID"
// @Success     200 {object} services.BalanceReport "Balance"
// @Failure     400 {object} ErrorResponse "Unsupported owner type"
// @Failure     404 {object} ErrorResponse "Owner not found"
// @Router      /balances/{type}/{id} [get]
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entityType, err := balance.ParseEntityType(c.Param("type"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	entityID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.balanceService.GetBalance(c.Request.Context(), teamID, entityType, entityID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": report})
}

// Reconcile handles comparing stored balances with the sum of active transactions
// @Summary     Audit balances
// @Description List every owner whose stored balance differs from its ledger sum
// @Tags        balances
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Success     200 {array} balance.Drift "Drifted owners, empty when consistent"
// @Router      /balances/reconcile [get]
func (h *BalanceHandler) Reconcile(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	drifts, err := h.balanceService.Reconcile(c.Request.Context(), teamID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"drifts": drifts, "consistent": len(drifts) == 0})
}
