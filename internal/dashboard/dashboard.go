// Package dashboard aggregates an introducer's claim pipeline into the
// figures their portal shows: volume by status, conversion rate, and the
// most recent submissions.
package dashboard

import (
	"context"
	"fmt"
	"math"

	"claimshub/internal/claims"
)

const recentLimit = 10

// Stats is one introducer's aggregate view.
type Stats struct {
	Total          int     `json:"total"`
	Successful     int     `json:"successful"`
	Unsuccessful   int     `json:"unsuccessful"`
	Duplicates     int     `json:"duplicates"`
	Pending        int     `json:"pending"`
	ConversionRate float64 `json:"conversion_rate"`

	Recent []*claims.Claim `json:"recent"`
}

// Service computes dashboard stats from the claim store.
type Service struct {
	store claims.Store
}

func NewService(store claims.Store) *Service {
	return &Service{store: store}
}

// StatsFor aggregates every stored claim for the introducer. The recent list
// is capped at ten, newest first.
func (s *Service) StatsFor(ctx context.Context, introducer string) (*Stats, error) {
	all, err := s.store.ListByIntroducer(ctx, introducer, 0)
	if err != nil {
		return nil, fmt.Errorf("load claims for stats: %w", err)
	}

	stats := &Stats{Recent: []*claims.Claim{}}
	for _, claim := range all {
		stats.Total++
		switch claim.Status {
		case claims.StatusSubmitted:
			stats.Successful++
		case claims.StatusRejected:
			stats.Unsuccessful++
		case claims.StatusDuplicate:
			stats.Duplicates++
		case claims.StatusPending:
			stats.Pending++
		}
	}
	if stats.Total > 0 {
		rate := float64(stats.Successful) / float64(stats.Total) * 100
		stats.ConversionRate = math.Round(rate*10) / 10
	}

	if len(all) > recentLimit {
		all = all[:recentLimit]
	}
	stats.Recent = all
	return stats, nil
}
