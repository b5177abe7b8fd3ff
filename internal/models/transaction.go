package models

import "time"

// Transaction is a ledger entry. Amount is signed and in minor currency
// units: positive is an inflow, negative an outflow.
//
// Revision increases on every create, update, delete and restore so that
// each lifecycle event has a unique (ID, Revision) identity.
type Transaction struct {
	Base
	TeamID     string    `gorm:"type:uuid;not null;index" json:"team_id"`
	AccountID  string    `gorm:"type:uuid;not null;index" json:"account_id"`
	MerchantID string    `gorm:"type:uuid;not null;index" json:"merchant_id"`
	CategoryID string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount     int64     `gorm:"type:bigint;not null" json:"amount"`
	Date       time.Time `gorm:"not null" json:"date"`
	Notes      string    `json:"notes,omitempty"`
	Revision   int64     `gorm:"type:bigint;not null;default:0" json:"revision"`

	// Loaded from transaction_tags.
	TagIDs []string `gorm:"-" json:"tag_ids"`
}

// TransactionTag links a transaction to one tag.
type TransactionTag struct {
	TransactionID string `gorm:"type:uuid;primaryKey"`
	TagID         string `gorm:"type:uuid;primaryKey;index"`
}
