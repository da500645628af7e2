package model

import "time"

// Venue is a dining place sourced from the venue provider. The primary key
// is the provider's stable place id; refreshes overwrite the mutable columns
// and rows are never deleted.
type Venue struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	PriceLevel     *int64
	Rating         *float64
	Latitude       float64
	Longitude      float64
	PhotoReference *string
	MapsURL        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
