package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ledgerly/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestTeam creates a USD team.
func CreateTestTeam(t *testing.T, db *gorm.DB) *models.Team {
	t.Helper()

	team := &models.Team{
		Name:     fmt.Sprintf("Test Team %d", nextID()),
		Currency: "USD",
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// CreateTestAccount creates an account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, teamID string) *models.Account {
	t.Helper()

	account := &models.Account{
		TeamID:   teamID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Currency: "USD",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestMerchant creates a merchant with zero balance.
func CreateTestMerchant(t *testing.T, db *gorm.DB, teamID string) *models.Merchant {
	t.Helper()

	merchant := &models.Merchant{
		TeamID: teamID,
		Name:   fmt.Sprintf("Test Merchant %d", nextID()),
	}
	if err := db.Create(merchant).Error; err != nil {
		t.Fatalf("failed to create test merchant: %v", err)
	}
	return merchant
}

// CreateTestCategory creates an expense category with zero balance.
func CreateTestCategory(t *testing.T, db *gorm.DB, teamID string) *models.Category {
	t.Helper()

	category := &models.Category{
		TeamID: teamID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   models.CategoryTypeExpense,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTag creates a tag with zero balance.
func CreateTestTag(t *testing.T, db *gorm.DB, teamID string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		TeamID: teamID,
		Name:   fmt.Sprintf("Test Tag %d", nextID()),
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// Ledger bundles one team with an account, merchant and category, the
// minimum needed to record a transaction.
type Ledger struct {
	Team     *models.Team
	Account  *models.Account
	Merchant *models.Merchant
	Category *models.Category
}

// CreateTestLedger creates a team and one owner of each required kind.
func CreateTestLedger(t *testing.T, db *gorm.DB) *Ledger {
	t.Helper()

	team := CreateTestTeam(t, db)
	return &Ledger{
		Team:     team,
		Account:  CreateTestAccount(t, db, team.ID),
		Merchant: CreateTestMerchant(t, db, team.ID),
		Category: CreateTestCategory(t, db, team.ID),
	}
}

// InsertTestTransaction writes a ledger row directly, bypassing balance
// maintenance. Use it to set up drift or to build snapshots by hand.
func InsertTestTransaction(t *testing.T, db *gorm.DB, l *Ledger, amount int64, tagIDs ...string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		TeamID:     l.Team.ID,
		AccountID:  l.Account.ID,
		MerchantID: l.Merchant.ID,
		CategoryID: l.Category.ID,
		Amount:     amount,
		Date:       time.Now().UTC(),
		Revision:   1,
		TagIDs:     tagIDs,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	for _, tagID := range tagIDs {
		if err := db.Create(&models.TransactionTag{TransactionID: tx.ID, TagID: tagID}).Error; err != nil {
			t.Fatalf("failed to tag test transaction: %v", err)
		}
	}
	return tx
}
