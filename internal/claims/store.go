package claims

import "context"

//go:generate mockgen -source=store.go -destination=mocks/store.go -package=mocks

// Store persists final claim records.
//
// Implementations return sentinel.ErrConflict when a reference is already
// taken, and plain wrapped errors for infrastructure failures.
type Store interface {
	// Create inserts a new claim.
	Create(ctx context.Context, claim *Claim) error

	// ListByIntroducer returns claims newest-first. An empty introducer
	// returns claims across all introducers. limit <= 0 means no limit.
	ListByIntroducer(ctx context.Context, introducer string, limit int) ([]*Claim, error)

	// CountByEmail counts stored claims for an introducer/email pair; the
	// eligibility stage uses it for duplicate detection.
	CountByEmail(ctx context.Context, introducer, email string) (int, error)
}
