// internal/models/bus.go
package models

import "time"

// Bus is a vehicle that can be assigned to any number of routes.
// BusNumber is unique across the whole fleet; the unique index backs the
// registry-level check.
type Bus struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	BusNumber    int       `gorm:"uniqueIndex;not null" json:"bus_number"`
	Name         string    `gorm:"not null" json:"name"`
	KmPrice      float64   `gorm:"not null" json:"km_price"`     // price per kilometer
	AverageSpeed float64   `gorm:"not null" json:"average_speed"` // km/h
}
