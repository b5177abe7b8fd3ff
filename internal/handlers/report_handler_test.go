package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/balance"
	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/services"
)

type mockBalanceService struct {
	getBalanceFn func(teamID string, entityType balance.EntityType, entityID string) (*services.BalanceReport, error)
	reconcileFn  func(teamID string) ([]balance.Drift, error)
}

func (m *mockBalanceService) GetBalance(_ context.Context, teamID string, entityType balance.EntityType, entityID string) (*services.BalanceReport, error) {
	if m.getBalanceFn != nil {
		return m.getBalanceFn(teamID, entityType, entityID)
	}
	return &services.BalanceReport{EntityType: entityType, EntityID: entityID}, nil
}

func (m *mockBalanceService) Reconcile(_ context.Context, teamID string) ([]balance.Drift, error) {
	if m.reconcileFn != nil {
		return m.reconcileFn(teamID)
	}
	return []balance.Drift{}, nil
}

type mockReportService struct {
	getSummariesFn func(teamID string, view balance.View) ([]services.SummaryRow, error)
	refreshViewsFn func(views ...balance.View) ([]services.RefreshResult, error)
}

func (m *mockReportService) GetSummaries(_ context.Context, teamID string, view balance.View) ([]services.SummaryRow, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(teamID, view)
	}
	return []services.SummaryRow{}, nil
}

func (m *mockReportService) RefreshViews(_ context.Context, views ...balance.View) ([]services.RefreshResult, error) {
	if m.refreshViewsFn != nil {
		return m.refreshViewsFn(views...)
	}
	return []services.RefreshResult{}, nil
}

var (
	_ services.BalanceServicer = (*mockBalanceService)(nil)
	_ services.ReportServicer  = (*mockReportService)(nil)
)

func setupReportRouter(balances *mockBalanceService, reports *mockReportService) *gin.Engine {
	r := gin.New()
	scoped := r.Group("", injectTeamID(testTeamID))
	balanceHandler := NewBalanceHandler(balances)
	scoped.GET("/balances/reconcile", balanceHandler.Reconcile)
	scoped.GET("/balances/:type/:id", balanceHandler.GetBalance)
	reportHandler := NewReportHandler(reports)
	scoped.GET("/reports/:view", reportHandler.GetSummaries)
	scoped.POST("/reports/refresh", reportHandler.RefreshViews)
	return r
}

func TestBalanceHandler_GetBalance(t *testing.T) {
	t.Run("returns the formatted balance", func(t *testing.T) {
		var gotType balance.EntityType
		balances := &mockBalanceService{
			getBalanceFn: func(_ string, entityType balance.EntityType, entityID string) (*services.BalanceReport, error) {
				gotType = entityType
				return &services.BalanceReport{EntityType: entityType, EntityID: entityID, Balance: -1250, Display: "-12.50", Currency: "USD"}, nil
			},
		}
		r := setupReportRouter(balances, &mockReportService{})

		rec := doRequest(r, "GET", "/balances/merchant/"+testMerchantID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotType != balance.EntityMerchant {
			t.Errorf("expected merchant, got %s", gotType)
		}
		report := parseJSON(t, rec)["balance"].(map[string]interface{})
		if report["display"] != "-12.50" {
			t.Errorf("unexpected display %v", report["display"])
		}
	})

	t.Run("rejects an unsupported type", func(t *testing.T) {
		rec := doRequest(setupReportRouter(&mockBalanceService{}, &mockReportService{}), "GET", "/balances/budget/"+testMerchantID, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_ENTITY_TYPE")
	})

	t.Run("maps a missing owner to 404", func(t *testing.T) {
		balances := &mockBalanceService{
			getBalanceFn: func(string, balance.EntityType, string) (*services.BalanceReport, error) {
				return nil, apperrors.ErrTagNotFound
			},
		}
		rec := doRequest(setupReportRouter(balances, &mockReportService{}), "GET", "/balances/tag/"+testTagID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBalanceHandler_Reconcile(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		rec := doRequest(setupReportRouter(&mockBalanceService{}, &mockReportService{}), "GET", "/balances/reconcile", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["consistent"] != true {
			t.Errorf("expected consistent, got %v", result["consistent"])
		}
		if drifts := result["drifts"].([]interface{}); len(drifts) != 0 {
			t.Errorf("expected no drifts, got %v", drifts)
		}
	})

	t.Run("reports drift", func(t *testing.T) {
		balances := &mockBalanceService{
			reconcileFn: func(string) ([]balance.Drift, error) {
				return []balance.Drift{{
					Key:      balance.Key{Type: balance.EntityAccount, ID: testAccountID},
					Stored:   100,
					Expected: 70,
				}}, nil
			},
		}
		rec := doRequest(setupReportRouter(balances, &mockReportService{}), "GET", "/balances/reconcile", "")
		result := parseJSON(t, rec)
		if result["consistent"] != false {
			t.Errorf("expected inconsistent, got %v", result["consistent"])
		}
		if drifts := result["drifts"].([]interface{}); len(drifts) != 1 {
			t.Errorf("expected one drift, got %v", drifts)
		}
	})
}

func TestReportHandler_GetSummaries(t *testing.T) {
	t.Run("reads a known view", func(t *testing.T) {
		var gotView balance.View
		reports := &mockReportService{
			getSummariesFn: func(_ string, view balance.View) ([]services.SummaryRow, error) {
				gotView = view
				return []services.SummaryRow{{OwnerID: testCategoryID, Name: "Food", Balance: -500, TransactionCount: 2}}, nil
			},
		}
		rec := doRequest(setupReportRouter(&mockBalanceService{}, reports), "GET", "/reports/category_summaries", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotView != balance.ViewCategorySummaries {
			t.Errorf("unexpected view %s", gotView)
		}
		rows := parseJSON(t, rec)["rows"].([]interface{})
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
	})

	t.Run("rejects an unknown view", func(t *testing.T) {
		rec := doRequest(setupReportRouter(&mockBalanceService{}, &mockReportService{}), "GET", "/reports/account_summaries", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_VIEW")
	})
}

func TestReportHandler_RefreshViews(t *testing.T) {
	t.Run("empty body refreshes every view", func(t *testing.T) {
		var gotViews []balance.View
		called := false
		reports := &mockReportService{
			refreshViewsFn: func(views ...balance.View) ([]services.RefreshResult, error) {
				called = true
				gotViews = views
				return []services.RefreshResult{{View: balance.ViewMerchantSummaries}}, nil
			},
		}
		rec := doRequest(setupReportRouter(&mockBalanceService{}, reports), "POST", "/reports/refresh", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !called || len(gotViews) != 0 {
			t.Errorf("expected a call with no explicit views, got called=%v views=%v", called, gotViews)
		}
	})

	t.Run("forwards selected views", func(t *testing.T) {
		var gotViews []balance.View
		reports := &mockReportService{
			refreshViewsFn: func(views ...balance.View) ([]services.RefreshResult, error) {
				gotViews = views
				return nil, nil
			},
		}
		rec := doRequest(setupReportRouter(&mockBalanceService{}, reports), "POST", "/reports/refresh", `{"views":["tag_summaries"]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(gotViews) != 1 || gotViews[0] != balance.ViewTagSummaries {
			t.Errorf("unexpected views %v", gotViews)
		}
	})

	t.Run("rejects unknown views", func(t *testing.T) {
		rec := doRequest(setupReportRouter(&mockBalanceService{}, &mockReportService{}), "POST", "/reports/refresh", `{"views":["nope"]}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("partial failure returns results with 500", func(t *testing.T) {
		reports := &mockReportService{
			refreshViewsFn: func(...balance.View) ([]services.RefreshResult, error) {
				return []services.RefreshResult{
					{View: balance.ViewMerchantSummaries},
					{View: balance.ViewTagSummaries, Error: "relation does not exist"},
				}, apperrors.ErrViewRefreshFailed
			},
		}
		rec := doRequest(setupReportRouter(&mockBalanceService{}, reports), "POST", "/reports/refresh", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "VIEW_REFRESH_FAILED")
		if results := result["results"].([]interface{}); len(results) != 2 {
			t.Errorf("expected both results, got %v", results)
		}
	})

	t.Run("unexpected errors are internal", func(t *testing.T) {
		reports := &mockReportService{
			refreshViewsFn: func(...balance.View) ([]services.RefreshResult, error) {
				return nil, errors.New("boom")
			},
		}
		rec := doRequest(setupReportRouter(&mockBalanceService{}, reports), "POST", "/reports/refresh", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}
