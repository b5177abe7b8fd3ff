package models

// Team is the multi-tenant partition. Every ledger owner and ledger entry
// belongs to exactly one team; references across teams are invalid.
type Team struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Currency string `gorm:"size:3;not null;default:'USD'" json:"currency"`
}
