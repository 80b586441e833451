package models

import "time"

// CartSnapshot persists one serialized cart payload under its storage key.
// The payload is the same JSON array the redis backend stores.
type CartSnapshot struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Payload   string    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default naming.
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
