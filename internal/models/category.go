package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category
type Category struct {
	Base
	TeamID  string       `gorm:"type:uuid;not null;index" json:"team_id"`
	Name    string       `gorm:"not null" json:"name"`
	Type    CategoryType `gorm:"not null" json:"type"`
	Color   string       `json:"color,omitempty"`
	Balance int64        `gorm:"type:bigint;not null;default:0" json:"balance"`
}
