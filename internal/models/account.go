package models

// Account represents a financial account in the system.
// Balance is maintained by the balance package and is never written by
// user-facing edits.
type Account struct {
	Base
	TeamID      string `gorm:"type:uuid;not null;index" json:"team_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Currency    string `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Balance     int64  `gorm:"type:bigint;not null;default:0" json:"balance"`
}
