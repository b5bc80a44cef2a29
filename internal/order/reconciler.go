package order

import (
	"context"
	"fmt"
	"time"

	"booking-warden/internal/logger"
	"booking-warden/internal/models"
)

type DBLayer interface {
	UpsertOrder(ctx context.Context, order *models.Order) error
	FindVanishedOrders(ctx context.Context, seenIDs []int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// Summary counts what one reconciliation pass did.
type Summary struct {
	Upserted int
	Active   int
	Inactive int // previously active orders aged out after their end
	Deleted  int // previously active orders that vanished before their end
}

type Reconciler struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewReconciler(db DBLayer, log *logger.Logger) *Reconciler {
	return &Reconciler{DB: db, Logger: log}
}

// Reconcile merges one feed pull into the store. The feed only reports a
// sliding window of orders, so it runs in two steps: upsert what is present,
// then age out what was active last time and is now missing. now is the pass
// timestamp and is used for every decision.
func (r *Reconciler) Reconcile(ctx context.Context, feed []models.Order, now time.Time) (Summary, error) {
	var summary Summary

	seenIDs := make([]int64, 0, len(feed))
	for i := range feed {
		o := feed[i]
		o.User = nil
		if o.Status == models.OrderStatusActive {
			seen := now
			o.LastSeenActiveAt = &seen
			summary.Active++
		} else {
			o.LastSeenActiveAt = nil
		}

		if err := r.DB.UpsertOrder(ctx, &o); err != nil {
			return summary, fmt.Errorf("reconcile: %w", err)
		}
		summary.Upserted++
		seenIDs = append(seenIDs, o.ID)
	}
	r.Logger.Info("RECONCILE", fmt.Sprintf("Upserted %d orders (%d active)", summary.Upserted, summary.Active))

	vanished, err := r.DB.FindVanishedOrders(ctx, seenIDs)
	if err != nil {
		return summary, fmt.Errorf("reconcile: %w", err)
	}

	for _, o := range vanished {
		status := AgedOutStatus(o, now)
		lastSeen := "never"
		if o.LastSeenActiveAt != nil {
			lastSeen = o.LastSeenActiveAt.UTC().Format(time.RFC3339)
		}
		r.Logger.LogOrder("AGE_OUT", o.ID, fmt.Sprintf("no longer ACTIVE (last seen at %s) - setting status to %s", lastSeen, status))

		if err := r.DB.UpdateStatus(ctx, o.ID, status); err != nil {
			return summary, fmt.Errorf("reconcile: %w", err)
		}
		if status == models.OrderStatusDeleted {
			summary.Deleted++
		} else {
			summary.Inactive++
		}
	}

	return summary, nil
}

// AgedOutStatus decides the terminal status of an order that vanished from
// the feed: removed before its period ended is DELETED, otherwise INACTIVE.
func AgedOutStatus(o models.Order, now time.Time) string {
	if now.Before(o.End) {
		return models.OrderStatusDeleted
	}
	return models.OrderStatusInactive
}
