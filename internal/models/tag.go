package models

// Tag is a free-form label; a transaction may carry any number of tags and
// each tag keeps the running sum of the transactions it labels.
type Tag struct {
	Base
	TeamID  string `gorm:"type:uuid;not null;index" json:"team_id"`
	Name    string `gorm:"not null" json:"name"`
	Color   string `json:"color,omitempty"`
	Balance int64  `gorm:"type:bigint;not null;default:0" json:"balance"`
}
