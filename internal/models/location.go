package models

import (
	"strings"

	"github.com/uptrace/bun"
)

// Location is a housing unit.
type Location struct {
	bun.BaseModel `bun:"table:locations"`

	ID           int64  `bun:"id,pk" json:"id"`
	Type         string `bun:"type" json:"type"`
	Address      string `bun:"address" json:"address"`
	Street       string `bun:"street" json:"street"`
	StreetNumber string `bun:"street_number" json:"streetNumber"`
	Floor        string `bun:"floor" json:"floor"`
	Ext          string `bun:"ext" json:"ext"`
	City         string `bun:"city" json:"city"`
	ZipCode      string `bun:"zip_code" json:"zipCode"`
	TypeID       int64  `bun:"type_id" json:"typeId"`
	Hidden       bool   `bun:"hidden,notnull" json:"hidden"`
}

// DisplayName joins address and city, skipping empty parts.
func (l Location) DisplayName() string {
	var parts []string
	for _, p := range []string{l.Address, l.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
