package db

import (
	"context"
	"errors"
	"fmt"

	"booking-warden/internal/models"

	"github.com/uptrace/bun"
)

var ErrOrderNotFound = errors.New("order not found")

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// UpsertOrder → insert a feed order, or refresh only its liveness fields
// (status, last_seen_active_at) when it already exists
func (d *DB) UpsertOrder(ctx context.Context, order *models.Order) error {
	_, err := d.Bun.NewInsert().
		Model(order).
		On("CONFLICT (id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("last_seen_active_at = EXCLUDED.last_seen_active_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert order %d: %w", order.ID, err)
	}
	return nil
}

// FindVanishedOrders → orders last seen ACTIVE whose id is not in seenIDs
func (d *DB) FindVanishedOrders(ctx context.Context, seenIDs []int64) ([]models.Order, error) {
	var orders []models.Order
	q := d.Bun.NewSelect().
		Model(&orders).
		Where("last_seen_active_at IS NOT NULL")
	if len(seenIDs) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(seenIDs))
	}
	if err := q.OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("find vanished orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus → set the status of one order, leaving every other column alone
func (d *DB) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update status of order %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update status of order %d: %w", id, ErrOrderNotFound)
	}
	return nil
}

// ---------------- RELATION QUERIES ----------------

// ListOrdersWithOwners → full order history with the owning user joined.
// Orders whose user is not in the users table come back with a nil User.
func (d *DB) ListOrdersWithOwners(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("User").
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders with owners: %w", err)
	}
	return orders, nil
}

// CountByStatus → number of stored orders per status
func (d *DB) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	err := d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
