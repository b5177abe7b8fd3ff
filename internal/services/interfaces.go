package services

import (
	"context"
	"time"

	"ledgerly/internal/balance"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
)

// TeamServicer defines the contract for team-related business logic.
type TeamServicer interface {
	CreateTeam(ctx context.Context, name, currency string) (*models.Team, error)
	GetTeamByID(ctx context.Context, teamID string) (*models.Team, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, teamID, name, description, currency string) (*models.Account, error)
	GetTeamAccounts(ctx context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(ctx context.Context, teamID, accountID string) (*models.Account, error)
	DeleteAccount(ctx context.Context, teamID, accountID string) error
}

// MerchantServicer defines the contract for merchant-related business logic.
type MerchantServicer interface {
	CreateMerchant(ctx context.Context, teamID, name, website string) (*models.Merchant, error)
	GetTeamMerchants(ctx context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Merchant], error)
	GetMerchantByID(ctx context.Context, teamID, merchantID string) (*models.Merchant, error)
	DeleteMerchant(ctx context.Context, teamID, merchantID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, teamID, name string, categoryType models.CategoryType, color string) (*models.Category, error)
	GetTeamCategories(ctx context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(ctx context.Context, teamID, categoryID string) (*models.Category, error)
	DeleteCategory(ctx context.Context, teamID, categoryID string) error
}

// TagServicer defines the contract for tag-related business logic.
type TagServicer interface {
	CreateTag(ctx context.Context, teamID, name, color string) (*models.Tag, error)
	GetTeamTags(ctx context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Tag], error)
	GetTagByID(ctx context.Context, teamID, tagID string) (*models.Tag, error)
	DeleteTag(ctx context.Context, teamID, tagID string) error
}

// TransactionInput is the full set of user-editable fields of a transaction.
// Updates replace every field.
type TransactionInput struct {
	AccountID  string
	MerchantID string
	CategoryID string
	TagIDs     []string
	Amount     int64
	Date       time.Time
	Notes      string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate       *time.Time
	ToDate         *time.Time
	AccountID      *string
	MerchantID     *string
	CategoryID     *string
	TagID          *string
	MinAmount      *int64
	MaxAmount      *int64
	IncludeDeleted bool
}

// TransactionServicer defines the contract for ledger entry business logic.
// Every write adjusts the affected balances in the same database transaction.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, teamID string, in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, teamID, transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, teamID, transactionID string) error
	RestoreTransaction(ctx context.Context, teamID, transactionID string) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, teamID, transactionID string) (*models.Transaction, error)
	GetTeamTransactions(ctx context.Context, teamID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// BalanceReport is the balance of one owner with its display amount.
type BalanceReport struct {
	EntityType balance.EntityType `json:"entity_type"`
	EntityID   string             `json:"entity_id"`
	Balance    int64              `json:"balance"`
	Display    string             `json:"display"`
	Currency   string             `json:"currency"`
}

// BalanceServicer defines the contract for reading and auditing balances.
type BalanceServicer interface {
	GetBalance(ctx context.Context, teamID string, entityType balance.EntityType, entityID string) (*BalanceReport, error)
	Reconcile(ctx context.Context, teamID string) ([]balance.Drift, error)
}

// SummaryRow is one row of a reporting view.
type SummaryRow struct {
	OwnerID           string     `json:"owner_id"`
	Name              string     `json:"name"`
	Balance           int64      `json:"balance"`
	Display           string     `json:"display"`
	TransactionCount  int64      `json:"transaction_count"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
}

// RefreshResult reports the outcome of refreshing one view.
type RefreshResult struct {
	View  balance.View `json:"view"`
	Error string       `json:"error,omitempty"`
}

// ReportServicer defines the contract for the reporting views.
type ReportServicer interface {
	GetSummaries(ctx context.Context, teamID string, view balance.View) ([]SummaryRow, error)
	RefreshViews(ctx context.Context, views ...balance.View) ([]RefreshResult, error)
}
