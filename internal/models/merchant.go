package models

// Merchant is the counterparty of a transaction.
type Merchant struct {
	Base
	TeamID  string `gorm:"type:uuid;not null;index" json:"team_id"`
	Name    string `gorm:"not null" json:"name"`
	Website string `json:"website,omitempty"`
	Balance int64  `gorm:"type:bigint;not null;default:0" json:"balance"`
}
