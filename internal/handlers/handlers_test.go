package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/logger"
	"ledgerly/internal/middleware"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
	"ledgerly/internal/validator"
)

const (
	testTeamID     = "0190a1b2-0000-7000-8000-000000000001"
	testAccountID  = "0190a1b2-0000-7000-8000-000000000002"
	testMerchantID = "0190a1b2-0000-7000-8000-000000000003"
	testCategoryID = "0190a1b2-0000-7000-8000-000000000004"
	testTagID      = "0190a1b2-0000-7000-8000-000000000005"
	testTxID       = "0190a1b2-0000-7000-8000-000000000006"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// --- mock owner services ---

type mockTeamService struct {
	createTeamFn  func(name, currency string) (*models.Team, error)
	getTeamByIDFn func(teamID string) (*models.Team, error)
}

func (m *mockTeamService) CreateTeam(_ context.Context, name, currency string) (*models.Team, error) {
	if m.createTeamFn != nil {
		return m.createTeamFn(name, currency)
	}
	return &models.Team{Name: name, Currency: currency}, nil
}

func (m *mockTeamService) GetTeamByID(_ context.Context, teamID string) (*models.Team, error) {
	if m.getTeamByIDFn != nil {
		return m.getTeamByIDFn(teamID)
	}
	return &models.Team{Base: models.Base{ID: teamID}}, nil
}

type mockAccountService struct {
	createAccountFn   func(teamID, name, description, currency string) (*models.Account, error)
	getTeamAccountsFn func(teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	getAccountByIDFn  func(teamID, accountID string) (*models.Account, error)
	deleteAccountFn   func(teamID, accountID string) error
}

func (m *mockAccountService) CreateAccount(_ context.Context, teamID, name, description, currency string) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(teamID, name, description, currency)
	}
	return &models.Account{TeamID: teamID, Name: name}, nil
}

func (m *mockAccountService) GetTeamAccounts(_ context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	if m.getTeamAccountsFn != nil {
		return m.getTeamAccountsFn(teamID, page)
	}
	resp := pagination.NewPageResponse([]models.Account{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAccountService) GetAccountByID(_ context.Context, teamID, accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(teamID, accountID)
	}
	return &models.Account{Base: models.Base{ID: accountID}, TeamID: teamID}, nil
}

func (m *mockAccountService) DeleteAccount(_ context.Context, teamID, accountID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(teamID, accountID)
	}
	return nil
}

type mockMerchantService struct {
	createMerchantFn func(teamID, name, website string) (*models.Merchant, error)
	deleteMerchantFn func(teamID, merchantID string) error
}

func (m *mockMerchantService) CreateMerchant(_ context.Context, teamID, name, website string) (*models.Merchant, error) {
	if m.createMerchantFn != nil {
		return m.createMerchantFn(teamID, name, website)
	}
	return &models.Merchant{TeamID: teamID, Name: name}, nil
}

func (m *mockMerchantService) GetTeamMerchants(_ context.Context, _ string, _ pagination.PageRequest) (*pagination.PageResponse[models.Merchant], error) {
	resp := pagination.NewPageResponse([]models.Merchant{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockMerchantService) GetMerchantByID(_ context.Context, teamID, merchantID string) (*models.Merchant, error) {
	return &models.Merchant{Base: models.Base{ID: merchantID}, TeamID: teamID}, nil
}

func (m *mockMerchantService) DeleteMerchant(_ context.Context, teamID, merchantID string) error {
	if m.deleteMerchantFn != nil {
		return m.deleteMerchantFn(teamID, merchantID)
	}
	return nil
}

type mockCategoryService struct {
	createCategoryFn func(teamID, name string, categoryType models.CategoryType, color string) (*models.Category, error)
}

func (m *mockCategoryService) CreateCategory(_ context.Context, teamID, name string, categoryType models.CategoryType, color string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(teamID, name, categoryType, color)
	}
	return &models.Category{TeamID: teamID, Name: name, Type: categoryType, Color: color}, nil
}

func (m *mockCategoryService) GetTeamCategories(_ context.Context, _ string, _ pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, teamID, categoryID string) (*models.Category, error) {
	return &models.Category{Base: models.Base{ID: categoryID}, TeamID: teamID}, nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, _, _ string) error {
	return nil
}

type mockTagService struct {
	createTagFn func(teamID, name, color string) (*models.Tag, error)
}

func (m *mockTagService) CreateTag(_ context.Context, teamID, name, color string) (*models.Tag, error) {
	if m.createTagFn != nil {
		return m.createTagFn(teamID, name, color)
	}
	return &models.Tag{TeamID: teamID, Name: name, Color: color}, nil
}

func (m *mockTagService) GetTeamTags(_ context.Context, _ string, _ pagination.PageRequest) (*pagination.PageResponse[models.Tag], error) {
	resp := pagination.NewPageResponse([]models.Tag{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTagService) GetTagByID(_ context.Context, teamID, tagID string) (*models.Tag, error) {
	return &models.Tag{Base: models.Base{ID: tagID}, TeamID: teamID}, nil
}

func (m *mockTagService) DeleteTag(_ context.Context, _, _ string) error {
	return nil
}

var (
	_ services.TeamServicer     = (*mockTeamService)(nil)
	_ services.AccountServicer  = (*mockAccountService)(nil)
	_ services.MerchantServicer = (*mockMerchantService)(nil)
	_ services.CategoryServicer = (*mockCategoryService)(nil)
	_ services.TagServicer      = (*mockTagService)(nil)
)

// --- test helpers ---

func injectTeamID(teamID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.TeamIDKey, teamID)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
