package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID         int64     `bun:"id,pk" json:"id"`
	Type       string    `bun:"type" json:"type"`
	Email      string    `bun:"email" json:"email"`
	FirstName  string    `bun:"first_name" json:"firstName"`
	LastName   string    `bun:"last_name" json:"lastName"`
	Phone      *string   `bun:"phone" json:"phone"`
	Role       string    `bun:"role" json:"role"`
	Alias      *string   `bun:"alias" json:"alias"`
	LocationID int64     `bun:"location_id,nullzero" json:"locationId"`
	Created    time.Time `bun:"created,nullzero" json:"created"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserList is the envelope of GET /api/members/users.
type UserList struct {
	List []User `json:"list"`
}
