// Package policy evaluates the fixed fair-use rules over the booking history
// and attributes every violation to a housing unit.
package policy

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"booking-warden/internal/logger"
	"booking-warden/internal/models"
)

type RuleID string

const (
	RuleSingleFutureBooking RuleID = "single_future_booking"
	RuleAnnualCap           RuleID = "annual_cap"
	RuleIneligibleUnit      RuleID = "ineligible_unit"
)

const startLayout = "02/01/2006, 15:04"

// Limits are the thresholds of the three rules.
type Limits struct {
	MaxFutureBookings  int
	MaxBookingsPerYear int
	UnitCeiling        int64
	Location           *time.Location
}

func DefaultLimits() Limits {
	return Limits{
		MaxFutureBookings:  1,
		MaxBookingsPerYear: 2,
		UnitCeiling:        39,
		Location:           time.UTC,
	}
}

// Directory resolves display names. Missing entries fall back to ids.
type Directory interface {
	UserName(userID int64) (string, bool)
	UnitLabel(unitID int64) (string, bool)
}

type Violation struct {
	Rule    RuleID
	Orders  []models.Order
	Message string
}

type UnitViolations struct {
	UnitID     int64
	Label      string
	Violations []Violation
}

func (u UnitViolations) Messages() []string {
	out := make([]string, len(u.Violations))
	for i, v := range u.Violations {
		out[i] = v.Message
	}
	return out
}

// Report holds the offending units in ascending id order.
type Report struct {
	Units []UnitViolations
}

// ByUnit maps unit id to its messages in rule order.
func (r Report) ByUnit() map[int64][]string {
	out := make(map[int64][]string, len(r.Units))
	for _, u := range r.Units {
		out[u.UnitID] = u.Messages()
	}
	return out
}

func (r Report) Count() int {
	n := 0
	for _, u := range r.Units {
		n += len(u.Violations)
	}
	return n
}

type Evaluator struct {
	limits Limits
	logger *logger.Logger
}

func NewEvaluator(limits Limits, log *logger.Logger) *Evaluator {
	if limits.Location == nil {
		limits.Location = time.UTC
	}
	return &Evaluator{limits: limits, logger: log}
}

// GroupByUnit partitions orders by their owner's unit, keeping query order
// inside each group. Orders with no resolvable unit are left out. The unit
// ids come back sorted.
func GroupByUnit(orders []models.Order) (map[int64][]models.Order, []int64) {
	groups := make(map[int64][]models.Order)
	var units []int64
	for _, o := range orders {
		unit := o.UnitID()
		if unit == 0 {
			continue
		}
		if _, ok := groups[unit]; !ok {
			units = append(units, unit)
		}
		groups[unit] = append(groups[unit], o)
	}
	slices.Sort(units)
	return groups, units
}

// Evaluate checks every unit against the three rules at the instant now.
func (e *Evaluator) Evaluate(orders []models.Order, now time.Time, dir Directory) Report {
	groups, units := GroupByUnit(orders)
	year := now.In(e.limits.Location).Year()

	var report Report
	for _, unit := range units {
		unitOrders := groups[unit]
		uv := UnitViolations{UnitID: unit, Label: unitLabel(dir, unit)}

		future := sortedByStart(unitOrders, func(o models.Order) bool { return o.Start.After(now) })
		if len(future) > e.limits.MaxFutureBookings {
			uv.Violations = append(uv.Violations, e.violation(RuleSingleFutureBooking, future, dir,
				futureHeadline(e.limits.MaxFutureBookings)))
		}

		thisYear := sortedByStart(unitOrders, func(o models.Order) bool { return o.Start.In(e.limits.Location).Year() == year })
		if len(thisYear) > e.limits.MaxBookingsPerYear {
			uv.Violations = append(uv.Violations, e.violation(RuleAnnualCap, thisYear, dir,
				fmt.Sprintf("Has more than %d bookings in %d", e.limits.MaxBookingsPerYear, year)))
		}

		if unit > e.limits.UnitCeiling && len(unitOrders) > 0 {
			all := sortedByStart(unitOrders, nil)
			uv.Violations = append(uv.Violations, e.violation(RuleIneligibleUnit, all, dir,
				"Is not allowed to have bookings"))
		}

		if len(uv.Violations) == 0 {
			continue
		}
		if e.logger != nil {
			for _, v := range uv.Violations {
				e.logger.LogViolation(uv.Label, v.Message)
			}
		}
		report.Units = append(report.Units, uv)
	}
	return report
}

func futureHeadline(max int) string {
	if max == 1 {
		return "Has more than one future booking"
	}
	return fmt.Sprintf("Has more than %d future bookings", max)
}

func (e *Evaluator) violation(rule RuleID, orders []models.Order, dir Directory, headline string) Violation {
	details := make([]string, len(orders))
	for i, o := range orders {
		details[i] = fmt.Sprintf("(%s, %s)", userLabel(dir, o), o.Start.In(e.limits.Location).Format(startLayout))
	}
	return Violation{
		Rule:    rule,
		Orders:  orders,
		Message: headline + " " + strings.Join(details, " "),
	}
}

// sortedByStart copies the orders accepted by keep (all when nil) and stable
// sorts them by start, so equal starts stay in query order.
func sortedByStart(orders []models.Order, keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if keep == nil || keep(o) {
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Order) int { return a.Start.Compare(b.Start) })
	return out
}

func unitLabel(dir Directory, unit int64) string {
	if dir != nil {
		if label, ok := dir.UnitLabel(unit); ok && label != "" {
			return label
		}
	}
	return fmt.Sprintf("Unit #%d", unit)
}

func userLabel(dir Directory, o models.Order) string {
	if dir != nil {
		if name, ok := dir.UserName(o.UserID); ok && name != "" {
			return name
		}
	}
	if o.User != nil {
		if name := o.User.FullName(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%d", o.UserID)
}
