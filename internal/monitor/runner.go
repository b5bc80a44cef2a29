// Package monitor runs one warden pass: fetch the booking feed, reconcile it
// into the store, evaluate the full history and report what breaks the rules.
package monitor

import (
	"context"
	"fmt"
	"time"

	"booking-warden/internal/directory"
	"booking-warden/internal/heynabo"
	"booking-warden/internal/logger"
	"booking-warden/internal/models"
	"booking-warden/internal/order"
	"booking-warden/internal/policy"
	"booking-warden/internal/report"

	"github.com/google/uuid"
)

type FeedClient interface {
	FetchBookingOrders(ctx context.Context, bookingID int64, token string) (*models.Booking, error)
}

// TokenSource hands out the session token. Forget drops a token the API
// has rejected so the next pass logs in again.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Forget(ctx context.Context)
}

type OrderReconciler interface {
	Reconcile(ctx context.Context, feed []models.Order, now time.Time) (order.Summary, error)
}

type HistoryStore interface {
	ListOrdersWithOwners(ctx context.Context) ([]models.Order, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type DirectoryLoader interface {
	LoadIndex(ctx context.Context) (*directory.Index, error)
}

type ViolationReporter interface {
	Report(ctx context.Context, d report.Digest) report.Result
}

type Runner struct {
	BookingID  int64
	Feed       FeedClient
	Tokens     TokenSource
	Reconciler OrderReconciler
	History    HistoryStore
	Directory  DirectoryLoader
	Evaluator  *policy.Evaluator
	Reporter   ViolationReporter
	Location   *time.Location
	Logger     *logger.Logger
}

type PassResult struct {
	RunID      string
	Fetched    int
	Reconciled order.Summary
	Evaluated  int
	Violations int
	Units      int
	Report     report.Result
}

// Run executes one pass with now as the single timestamp for every step.
// Any failure before reporting aborts the pass; what was already written stays.
func (r *Runner) Run(ctx context.Context, now time.Time) (PassResult, error) {
	res := PassResult{RunID: uuid.NewString()}
	r.Logger.LogPass(res.RunID, fmt.Sprintf("Pass started for booking %d at %s", r.BookingID, now.Format(time.RFC3339)))

	token, err := r.Tokens.Token(ctx)
	if err != nil {
		return res, fmt.Errorf("authenticate: %w", err)
	}

	booking, err := r.Feed.FetchBookingOrders(ctx, r.BookingID, token)
	if err != nil {
		if heynabo.IsUnauthorized(err) {
			r.Logger.Warn("FEED", "Session token rejected, dropping it for the next pass")
			r.Tokens.Forget(ctx)
		}
		return res, fmt.Errorf("fetch: %w", err)
	}
	res.Fetched = len(booking.Orders)

	res.Reconciled, err = r.Reconciler.Reconcile(ctx, booking.Orders, now)
	if err != nil {
		return res, err
	}
	r.Logger.LogPass(res.RunID, fmt.Sprintf("Reconciled %d orders (%d active, %d aged out inactive, %d aged out deleted)",
		res.Reconciled.Upserted, res.Reconciled.Active, res.Reconciled.Inactive, res.Reconciled.Deleted))

	history, err := r.History.ListOrdersWithOwners(ctx)
	if err != nil {
		return res, fmt.Errorf("load history: %w", err)
	}
	res.Evaluated = len(history)

	dir, err := r.Directory.LoadIndex(ctx)
	if err != nil {
		return res, fmt.Errorf("load directory: %w", err)
	}

	rep := r.Evaluator.Evaluate(history, now, dir)
	res.Units = len(rep.Units)
	res.Violations = rep.Count()

	res.Report = r.Reporter.Report(ctx, report.NewDigest(res.RunID, rep, now, r.Location))

	if counts, err := r.History.CountByStatus(ctx); err != nil {
		r.Logger.Warn("DATABASE", fmt.Sprintf("Could not count stored orders: %v", err))
	} else {
		r.Logger.LogPass(res.RunID, fmt.Sprintf("Store holds %d %s, %d %s, %d %s",
			counts[models.OrderStatusActive], models.OrderStatusActive,
			counts[models.OrderStatusInactive], models.OrderStatusInactive,
			counts[models.OrderStatusDeleted], models.OrderStatusDeleted))
	}

	r.Logger.LogPass(res.RunID, fmt.Sprintf("Pass finished: %d fetched, %d evaluated, %d violations in %d units",
		res.Fetched, res.Evaluated, res.Violations, res.Units))
	return res, nil
}
