package db

import (
	"context"
	"fmt"

	"booking-warden/internal/models"

	"github.com/uptrace/bun"
)

var (
	locationColumns = []string{"type", "address", "street", "street_number", "floor", "ext", "city", "zip_code", "type_id", "hidden"}
	userColumns     = []string{"type", "email", "first_name", "last_name", "phone", "role", "alias", "location_id", "created"}
)

type DB struct {
	Bun *bun.DB
}

// UpsertLocation → insert or fully overwrite one housing unit
func (d *DB) UpsertLocation(ctx context.Context, location *models.Location) error {
	q := d.Bun.NewInsert().Model(location).On("CONFLICT (id) DO UPDATE")
	if _, err := setExcluded(q, locationColumns).Exec(ctx); err != nil {
		return fmt.Errorf("upsert location %d: %w", location.ID, err)
	}
	return nil
}

// UpsertUser → insert or fully overwrite one user
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	q := d.Bun.NewInsert().Model(user).On("CONFLICT (id) DO UPDATE")
	if _, err := setExcluded(q, userColumns).Exec(ctx); err != nil {
		return fmt.Errorf("upsert user %d: %w", user.ID, err)
	}
	return nil
}

func (d *DB) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := d.Bun.NewSelect().Model(&locations).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := d.Bun.NewSelect().Model(&users).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func setExcluded(q *bun.InsertQuery, columns []string) *bun.InsertQuery {
	for _, c := range columns {
		q = q.Set("? = EXCLUDED.?", bun.Ident(c), bun.Ident(c))
	}
	return q
}
