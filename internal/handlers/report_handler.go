package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/balance"
	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/services"
)

// ReportHandler serves the reporting views.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RefreshViewsRequest selects the views to rebuild. Empty means all.
type RefreshViewsRequest struct {
	Views []string `json:"views" binding:"omitempty,dive,report_view"`
}

// GetSummaries handles reading one reporting view for the team
// @Summary     Get a reporting view
// @Tags        reports
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       view path string true "View (merchant_summaries, category_summaries, tag_summaries)"
// @Success     200 {array} services.SummaryRow "Summary rows"
// @Failure     400 {object} ErrorResponse "Unknown view"
// @Router      /reports/{view} [get]
func (h *ReportHandler) GetSummaries(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := balance.ParseView(c.Param("view"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.reportService.GetSummaries(c.Request.Context(), teamID, view)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": view, "rows": rows})
}

// RefreshViews handles an on-demand rebuild of the reporting views
// @Summary     Refresh reporting views
// @Description Rebuild the selected views; one failing view does not stop the others
// @Tags        reports
// @Accept      json
// @Produce     json
// @Param       X-Team-ID header string true "Team ID"
// @Param       request body RefreshViewsRequest false "Views to refresh"
// @Success     200 {array} services.RefreshResult "Every view refreshed"
// @Failure     500 {object} ErrorResponse "At least one view failed"
// @Router      /reports/refresh [post]
func (h *ReportHandler) RefreshViews(c *gin.Context) {
	var req RefreshViewsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	views := make([]balance.View, 0, len(req.Views))
	for _, v := range req.Views {
		view, err := balance.ParseView(v)
		if err != nil {
			respondWithError(c, err)
			return
		}
		views = append(views, view)
	}

	results, err := h.reportService.RefreshViews(c.Request.Context(), views...)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrViewRefreshFailed.Code {
			c.JSON(appErr.StatusCode, gin.H{
				"error": gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
				},
				"results": results,
			})
			return
		}
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
