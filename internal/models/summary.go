package models

import "time"

// MerchantSummary is a row of the merchant_summaries reporting view.
type MerchantSummary struct {
	MerchantID        string     `gorm:"type:uuid;primaryKey" json:"merchant_id"`
	TeamID            string     `gorm:"type:uuid;index" json:"team_id"`
	Name              string     `json:"name"`
	Balance           int64      `gorm:"type:bigint" json:"balance"`
	TransactionCount  int64      `json:"transaction_count"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
}

// CategorySummary is a row of the category_summaries reporting view.
type CategorySummary struct {
	CategoryID        string     `gorm:"type:uuid;primaryKey" json:"category_id"`
	TeamID            string     `gorm:"type:uuid;index" json:"team_id"`
	Name              string     `json:"name"`
	Balance           int64      `gorm:"type:bigint" json:"balance"`
	TransactionCount  int64      `json:"transaction_count"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
}

// TagSummary is a row of the tag_summaries reporting view.
type TagSummary struct {
	TagID             string     `gorm:"type:uuid;primaryKey" json:"tag_id"`
	TeamID            string     `gorm:"type:uuid;index" json:"team_id"`
	Name              string     `json:"name"`
	Balance           int64      `gorm:"type:bigint" json:"balance"`
	TransactionCount  int64      `json:"transaction_count"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
}
