// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol represents a ticker symbol in the catalog.
// It contains information about a tradable security or rate including its
// code, name, market, quote currency, and display ordering.
type Symbol struct {
	ID          uint      `gorm:"primaryKey"`
	Code        string    `gorm:"size:20;not null;uniqueIndex"`
	Name        string    `gorm:"size:255;not null"`
	Market      string    `gorm:"size:100;not null"`
	Currency    string    `gorm:"size:3;not null"` // ISO 4217 quote currency
	Passthrough bool      `gorm:"not null"`        // plotted as raw prices (e.g. exchange rates)
	IsActive    bool      `gorm:"not null"`
	SortKey     int       `gorm:"not null;default:0"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
