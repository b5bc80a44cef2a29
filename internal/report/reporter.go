package report

import (
	"context"
	"fmt"

	"booking-warden/internal/logger"
)

type Result struct {
	Units     int
	Delivered int
	Failed    int
}

// Reporter fans a digest out to every publisher. Publisher failures are
// logged and never returned; the pass outcome does not depend on delivery.
type Reporter struct {
	publishers []Publisher
	logger     *logger.Logger
}

func NewReporter(log *logger.Logger, publishers ...Publisher) *Reporter {
	return &Reporter{publishers: publishers, logger: log}
}

func (r *Reporter) Report(ctx context.Context, d Digest) Result {
	res := Result{Units: len(d.Blocks)}
	if d.Empty() {
		r.logger.Info("REPORT", "No violations, nothing to publish")
		return res
	}

	for _, p := range r.publishers {
		if err := p.Publish(ctx, d); err != nil {
			res.Failed++
			r.logger.Error("REPORT", fmt.Sprintf("Publishing via %s failed: %v", p.Name(), err))
			continue
		}
		res.Delivered++
		r.logger.Info("REPORT", fmt.Sprintf("Published %d unit(s) via %s", len(d.Blocks), p.Name()))
	}
	return res
}
