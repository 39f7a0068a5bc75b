package model

import "time"

// InventoryItem is a stocked item with a reorder threshold. An item is
// considered low stock when Quantity <= Threshold.
//
// LastRestocked carries autoUpdateTime, so every persisted write touches it,
// not only restocks.
type InventoryItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Category      string    `gorm:"size:20;not null" json:"category"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	Threshold     int       `gorm:"not null" json:"threshold"`
	Department    string    `gorm:"size:100;not null" json:"department"`
	LastRestocked time.Time `gorm:"autoUpdateTime" json:"last_restocked"`
}
