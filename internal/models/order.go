package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	OrderStatusActive   = "ACTIVE"
	OrderStatusInactive = "INACTIVE"
	OrderStatusDeleted  = "DELETED"
)

// Order is one reservation of a booking item. The JSON tags follow the
// Heynabo feed so feed orders decode straight into it.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID               int64      `bun:"id,pk" json:"id"`
	Type             string     `bun:"type" json:"type"`
	BookingID        int64      `bun:"booking_id,notnull" json:"bookingId"`
	UserID           int64      `bun:"user_id,notnull" json:"userId"`
	Status           string     `bun:"status,notnull" json:"status"`
	UserComment      string     `bun:"user_comment" json:"userComment"`
	Start            time.Time  `bun:"start_at,notnull" json:"start"`
	End              time.Time  `bun:"end_at,notnull" json:"end"`
	Created          time.Time  `bun:"created,notnull" json:"created"`
	LastSeenActiveAt *time.Time `bun:"last_seen_active_at" json:"lastSeenActiveAt,omitempty"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}

// UnitID is the housing unit of the order's owner, or 0 when the owner or
// the owner's unit is unknown.
func (o Order) UnitID() int64 {
	if o.User == nil {
		return 0
	}
	return o.User.LocationID
}

// Booking is the Heynabo booking item with its current order window.
type Booking struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	LocationID  *int64  `json:"locationId"`
	Orders      []Order `json:"orders"`
}
