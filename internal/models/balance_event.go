package models

import "time"

// AppliedBalanceEvent records that the balance effect of one lifecycle event
// of a transaction has been applied. The composite key makes a replayed
// event detectable.
type AppliedBalanceEvent struct {
	TransactionID string    `gorm:"type:uuid;primaryKey" json:"transaction_id"`
	Revision      int64     `gorm:"primaryKey;autoIncrement:false" json:"revision"`
	Kind          string    `gorm:"not null" json:"kind"`
	AppliedAt     time.Time `gorm:"not null" json:"applied_at"`
}

// ViewRefreshFailure records a reporting view refresh that failed after the
// triggering mutation's balances were persisted.
type ViewRefreshFailure struct {
	Base
	TeamID        string `gorm:"type:uuid;not null" json:"team_id"`
	View          string `gorm:"not null;index" json:"view"`
	TransactionID string `gorm:"type:uuid" json:"transaction_id,omitempty"`
	Error         string `gorm:"not null" json:"error"`
}
