package model

import (
	"time"

	"gorm.io/gorm"
)

// DinnerGroup is the social grouping of users attending a venue, at most one
// per venue. Groups are created lazily on first join and never reaped; an
// empty group just gets reused by the next join to its venue.
type DinnerGroup struct {
	gorm.Model
	RestaurantID string `gorm:"uniqueIndex"`
}

// Attendee links a user to at most one dinner group. No gorm.Model here:
// rows are hard-deleted, since a soft-deleted row would still occupy the
// user_id unique index and block the user from ever joining again.
type Attendee struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        string `gorm:"uniqueIndex"`
	DinnerGroupID uint
	CreatedAt     time.Time

	DinnerGroup DinnerGroup `gorm:"foreignKey:DinnerGroupID"`
}
