// Package eligibility runs the post-intake qualification check that sits
// between the final form step and the signature request. The check is a
// deliberate pause: lender record matching happens offline, so the visitor
// sees a fixed-length "checking your details" stage while the service runs
// its duplicate screen.
package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DuplicateCounter reports how many stored claims already carry an email for
// an introducer.
type DuplicateCounter interface {
	CountByEmail(ctx context.Context, introducer, email string) (int, error)
}

// Outcome is the result of one eligibility check. Qualified is always true
// today; Duplicate downgrades the eventual stored status without blocking
// the visitor.
type Outcome struct {
	Qualified bool `json:"qualified"`
	Duplicate bool `json:"duplicate"`
}

// Checker performs the qualification pause and duplicate screen in parallel.
type Checker struct {
	counter DuplicateCounter
	delay   time.Duration
	logger  *slog.Logger
}

func NewChecker(counter DuplicateCounter, delay time.Duration, logger *slog.Logger) *Checker {
	return &Checker{counter: counter, delay: delay, logger: logger}
}

// Check waits out the qualification delay and screens for duplicates at the
// same time, returning once both finish. Cancelling the context aborts the
// wait.
func (c *Checker) Check(ctx context.Context, introducer, email string) (Outcome, error) {
	var duplicate bool

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	g.Go(func() error {
		count, err := c.counter.CountByEmail(ctx, introducer, email)
		if err != nil {
			return fmt.Errorf("duplicate screen: %w", err)
		}
		duplicate = count > 0
		return nil
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	if duplicate {
		c.logger.InfoContext(ctx, "duplicate submission detected",
			"introducer", introducer,
		)
	}
	return Outcome{Qualified: true, Duplicate: duplicate}, nil
}
