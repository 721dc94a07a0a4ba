package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"claimshub/internal/draft"
	"claimshub/internal/funnel/step"
	"claimshub/internal/funnel/validate"
	"claimshub/internal/platform/metrics"
	domainerrors "claimshub/pkg/domain-errors"
	"claimshub/pkg/platform/sentinel"
)

// referenceRetries bounds how many times Create regenerates a colliding
// reference before giving up. Two submissions inside the same millisecond
// are the only way to collide.
const referenceRetries = 3

// Service owns claim creation and listing on top of a Store.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateInput carries the full field set of a completed intake. DateOfBirth
// is accepted either as dd/mm/yyyy or as the three split components.
type CreateInput struct {
	Introducer string

	Title      string
	FirstName  string
	MiddleName string
	LastName   string

	DateOfBirth string
	DOBDay      string
	DOBMonth    string
	DOBYear     string

	Email string
	Phone string

	AddressLine1 string
	AddressLine2 string
	City         string
	County       string
	Postcode     string

	HasCarFinance    string
	MultipleVehicles string

	Signature string
	Status    Status
}

// Create validates the input, assigns identity and a reference, and stores
// the claim. The stored status downgrades to duplicate when the same email
// already submitted through the same introducer.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Claim, error) {
	day, month, year := in.DOBDay, in.DOBMonth, in.DOBYear
	if in.DateOfBirth != "" {
		parts := strings.Split(in.DateOfBirth, "/")
		if len(parts) != 3 {
			return nil, domainerrors.New(domainerrors.CodeValidation, "date_of_birth must be dd/mm/yyyy")
		}
		day, month, year = parts[0], parts[1], parts[2]
	}

	fields := draft.Draft{
		"title":         in.Title,
		"first_name":    in.FirstName,
		"middle_name":   in.MiddleName,
		"last_name":     in.LastName,
		"dob_day":       day,
		"dob_month":     month,
		"dob_year":      year,
		"email":         in.Email,
		"phone":         in.Phone,
		"address_line1": in.AddressLine1,
		"address_line2": in.AddressLine2,
		"city":          in.City,
		"county":        in.County,
		"postcode":      in.Postcode,

		"has_car_finance":   in.HasCarFinance,
		"multiple_vehicles": in.MultipleVehicles,
	}
	if errs := s.validateAll(fields); !errs.Valid() {
		return nil, validationError(errs)
	}

	status := in.Status
	if status == "" {
		status = StatusSubmitted
	}
	if status == StatusSubmitted {
		count, err := s.store.CountByEmail(ctx, in.Introducer, in.Email)
		if err != nil {
			return nil, fmt.Errorf("duplicate check: %w", err)
		}
		if count > 0 {
			status = StatusDuplicate
		}
	}

	now := s.now()
	claim := &Claim{
		ID:               uuid.NewString(),
		Introducer:       in.Introducer,
		Title:            in.Title,
		FirstName:        in.FirstName,
		MiddleName:       in.MiddleName,
		LastName:         in.LastName,
		DOBDay:           day,
		DOBMonth:         month,
		DOBYear:          year,
		Email:            in.Email,
		Phone:            in.Phone,
		AddressLine1:     in.AddressLine1,
		AddressLine2:     in.AddressLine2,
		City:             in.City,
		County:           in.County,
		Postcode:         in.Postcode,
		HasCarFinance:    in.HasCarFinance,
		MultipleVehicles: in.MultipleVehicles,
		Signature:        in.Signature,
		Status:           status,
		SubmittedAt:      now,
		CreatedAt:        now,
	}

	for attempt := 0; ; attempt++ {
		claim.Reference = NewReference(now.Add(time.Duration(attempt) * time.Millisecond))
		err := s.store.Create(ctx, claim)
		if err == nil {
			break
		}
		if errors.Is(err, sentinel.ErrConflict) && attempt < referenceRetries {
			continue
		}
		return nil, fmt.Errorf("store claim: %w", err)
	}

	s.metrics.IncClaimSubmitted(string(claim.Status))
	s.logger.InfoContext(ctx, "claim stored",
		"reference", claim.Reference,
		"introducer", claim.Introducer,
		"status", claim.Status,
	)
	return claim, nil
}

// List returns stored claims newest-first, optionally filtered by
// introducer and capped at limit.
func (s *Service) List(ctx context.Context, introducer string, limit int) ([]*Claim, error) {
	out, err := s.store.ListByIntroducer(ctx, introducer, limit)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return out, nil
}

func (s *Service) validateAll(fields draft.Draft) validate.Errors {
	now := s.now()
	errs := validate.Errors{}
	for _, st := range step.Ordered() {
		for field, msg := range validate.ForStep(st, fields, now) {
			errs[field] = msg
		}
	}
	return errs
}

func validationError(errs validate.Errors) error {
	parts := make([]string, 0, len(errs))
	for field, msg := range errs {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return domainerrors.New(domainerrors.CodeValidation, strings.Join(parts, "; "))
}
