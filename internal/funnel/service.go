// Package funnel is the flow controller for the claim intake journey: the
// ordered form steps, the eligibility pause, the signing stage, and final
// submission. All state lives server-side against the visitor's session, so
// every operation takes the (session, introducer) pair.
package funnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"claimshub/internal/audit"
	"claimshub/internal/claims"
	"claimshub/internal/draft"
	"claimshub/internal/eligibility"
	"claimshub/internal/funnel/signature"
	"claimshub/internal/funnel/step"
	"claimshub/internal/funnel/validate"
	"claimshub/internal/introducer"
	"claimshub/internal/platform/metrics"
	domainerrors "claimshub/pkg/domain-errors"
	"claimshub/pkg/platform/sentinel"
)

var tracer = otel.Tracer("claimshub/internal/funnel")

// Target tells the client where the journey goes next.
type Target struct {
	Kind string `json:"kind"` // step, checking, signature, thank_you, entry
	Step string `json:"step,omitempty"`
}

// Signing states. A signature alone is unconfirmed: the visitor still has to
// accept the terms at submission.
const (
	SigningUnsigned   = "unsigned"
	SigningSigned     = "signed-unconfirmed"
	SigningSubmitting = "submitting"
	SigningSubmitted  = "submitted"
)

// Service drives the intake journey.
type Service struct {
	introducers *introducer.Service
	drafts      draft.Store
	claims      *claims.Service
	checker     *eligibility.Checker
	publisher   *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger

	autoAdvanceDelay time.Duration
	submits          singleflight.Group
	now              func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(
	introducers *introducer.Service,
	drafts draft.Store,
	claimsService *claims.Service,
	checker *eligibility.Checker,
	publisher *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	autoAdvanceDelay time.Duration,
) *Service {
	return &Service{
		introducers:      introducers,
		drafts:           drafts,
		claims:           claimsService,
		checker:          checker,
		publisher:        publisher,
		metrics:          m,
		logger:           logger,
		autoAdvanceDelay: autoAdvanceDelay,
		now:              time.Now,
		inflight:         make(map[string]struct{}),
	}
}

// EntryState describes the funnel landing for one introducer, including
// where a returning session should resume.
type EntryState struct {
	Introducer *introducer.Introducer `json:"introducer"`
	ResumeStep string                 `json:"resume_step"`
	TotalSteps int                    `json:"total_steps"`
}

// Enter resolves the introducer and computes the resume point: the first
// step whose answers don't yet validate.
func (s *Service) Enter(ctx context.Context, sessionID, slug string) (*EntryState, error) {
	in, err := s.introducers.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.Load(ctx, sessionID, in.Slug)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	resume := step.First().Slug
	for _, st := range step.Ordered() {
		if !validate.ForStep(st, d, s.now()).Valid() {
			resume = st.Slug
			break
		}
		if step.IsFinal(st.Slug) {
			resume = st.Slug
		}
	}

	s.publisher.Emit(audit.Event{
		Kind:       audit.KindFunnelEntered,
		Introducer: in.Slug,
		SessionID:  sessionID,
	})
	return &EntryState{Introducer: in, ResumeStep: resume, TotalSteps: step.Count()}, nil
}

// StepState is one step rendered for the client: its schema, the session's
// saved values for its fields, and its position in the sequence.
type StepState struct {
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Kind        string            `json:"kind"`
	Options     []string          `json:"options,omitempty"`
	Values      map[string]string `json:"values"`
	Index       int               `json:"index"`
	Total       int               `json:"total"`
	AutoAdvance bool              `json:"auto_advance"`
	DelayMS     int64             `json:"auto_advance_delay_ms,omitempty"`
}

// Step returns the state of one form step for the session.
func (s *Service) Step(ctx context.Context, sessionID, slug, stepSlug string) (*StepState, error) {
	in, st, err := s.resolveStep(ctx, slug, stepSlug)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.Load(ctx, sessionID, in.Slug)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	values := make(map[string]string)
	for _, field := range fieldsFor(st) {
		if v, ok := d[field]; ok {
			values[field] = v
		}
	}

	state := &StepState{
		Slug:        st.Slug,
		Title:       st.Title,
		Kind:        string(st.Kind),
		Options:     st.Options,
		Values:      values,
		Index:       step.Index(st.Slug),
		Total:       step.Count(),
		AutoAdvance: st.AutoAdvance,
	}
	if st.AutoAdvance {
		state.DelayMS = s.autoAdvanceDelay.Milliseconds()
	}
	return state, nil
}

// SaveFields writes step answers through to the draft without validating.
// Unknown fields for the step are dropped, not saved.
func (s *Service) SaveFields(ctx context.Context, sessionID, slug, stepSlug string, fields map[string]string) error {
	in, st, err := s.resolveStep(ctx, slug, stepSlug)
	if err != nil {
		return err
	}
	d, err := s.drafts.Load(ctx, sessionID, in.Slug)
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}

	d.Merge(restrict(st, fields))
	if err := s.drafts.Save(ctx, sessionID, in.Slug, d); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	s.metrics.IncDraftSaved()
	return nil
}

// AdvanceResult reports one advancement attempt. Errors is non-empty when
// the step's answers don't validate; Next is set when the journey moved.
type AdvanceResult struct {
	Advanced bool            `json:"advanced"`
	Errors   validate.Errors `json:"errors,omitempty"`
	Next     *Target         `json:"next,omitempty"`
}

// Advance merges the posted fields, validates the step, and moves the
// journey forward. Completing the final step stashes the draft into the
// holding area and routes to the eligibility check.
func (s *Service) Advance(ctx context.Context, sessionID, slug, stepSlug string, fields map[string]string) (*AdvanceResult, error) {
	in, st, err := s.resolveStep(ctx, slug, stepSlug)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.Load(ctx, sessionID, in.Slug)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	d.Merge(restrict(st, fields))
	if err := s.drafts.Save(ctx, sessionID, in.Slug, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	s.metrics.IncDraftSaved()

	if errs := validate.ForStep(st, d, s.now()); !errs.Valid() {
		return &AdvanceResult{Advanced: false, Errors: errs}, nil
	}

	s.metrics.IncStepAdvance(st.Slug)
	s.publisher.Emit(audit.Event{
		Kind:       audit.KindStepAdvanced,
		Introducer: in.Slug,
		SessionID:  sessionID,
		Detail:     map[string]string{"step": st.Slug},
	})

	if step.IsFinal(st.Slug) {
		snap := draft.Snapshot{Fields: d.Clone()}
		if err := s.drafts.Stash(ctx, sessionID, in.Slug, snap); err != nil {
			return nil, fmt.Errorf("stash draft: %w", err)
		}
		return &AdvanceResult{Advanced: true, Next: &Target{Kind: "checking"}}, nil
	}

	next, _ := step.Next(st.Slug)
	return &AdvanceResult{Advanced: true, Next: &Target{Kind: "step", Step: next.Slug}}, nil
}

// Back moves to the previous step. Backing out of the first step returns to
// the funnel entry. Saved answers are kept either way.
func (s *Service) Back(ctx context.Context, sessionID, slug, stepSlug string) (*Target, error) {
	in, st, err := s.resolveStep(ctx, slug, stepSlug)
	if err != nil {
		return nil, err
	}

	s.publisher.Emit(audit.Event{
		Kind:       audit.KindStepReversed,
		Introducer: in.Slug,
		SessionID:  sessionID,
		Detail:     map[string]string{"step": st.Slug},
	})

	prev, ok := step.Prev(st.Slug)
	if !ok {
		return &Target{Kind: "entry"}, nil
	}
	return &Target{Kind: "step", Step: prev.Slug}, nil
}

// CheckResult is the outcome of the eligibility pause.
type CheckResult struct {
	Qualified bool    `json:"qualified"`
	Duplicate bool    `json:"duplicate"`
	Next      *Target `json:"next"`
}

// Checking runs the qualification stage against the stashed form. The call
// blocks for the configured pause; clients poll nothing.
func (s *Service) Checking(ctx context.Context, sessionID, slug string) (*CheckResult, error) {
	in, err := s.introducers.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadStash(ctx, sessionID, in.Slug)
	if err != nil {
		return nil, err
	}

	outcome, err := s.checker.Check(ctx, in.Slug, snap.Fields["email"])
	if err != nil {
		return nil, fmt.Errorf("eligibility check: %w", err)
	}
	return &CheckResult{
		Qualified: outcome.Qualified,
		Duplicate: outcome.Duplicate,
		Next:      &Target{Kind: "signature"},
	}, nil
}

// SigningState reports where the session is in the signing stage.
type SigningState struct {
	State string `json:"state"`
}

// Signing returns the current signing state for the session.
func (s *Service) Signing(ctx context.Context, sessionID, slug string) (*SigningState, error) {
	in, err := s.introducers.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	if s.isSubmitting(sessionID, in.Slug) {
		return &SigningState{State: SigningSubmitting}, nil
	}
	snap, err := s.loadStash(ctx, sessionID, in.Slug)
	if err != nil {
		return nil, err
	}
	return &SigningState{State: signingState(snap)}, nil
}

// SaveSignature attaches the signature artifact to the stashed form. Either
// a rendered data URL or raw strokes may be supplied; the data URL wins when
// both are present.
func (s *Service) SaveSignature(ctx context.Context, sessionID, slug, dataURL string, strokes []signature.Stroke) (*SigningState, error) {
	in, err := s.introducers.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadStash(ctx, sessionID, in.Slug)
	if err != nil {
		return nil, err
	}
	if snap.Submitted() {
		return nil, domainerrors.New(domainerrors.CodeConflict, "claim already submitted")
	}

	var artifact string
	switch {
	case dataURL != "":
		artifact, err = signature.FromDataURL(dataURL)
	case len(strokes) > 0:
		artifact, err = signature.FromStrokes(strokes)
	default:
		err = domainerrors.New(domainerrors.CodeBadRequest, "signature is required")
	}
	if err != nil {
		return nil, err
	}

	snap.Signature = artifact
	if err := s.drafts.Stash(ctx, sessionID, in.Slug, snap); err != nil {
		return nil, fmt.Errorf("stash signature: %w", err)
	}

	s.publisher.Emit(audit.Event{
		Kind:       audit.KindSignatureSaved,
		Introducer: in.Slug,
		SessionID:  sessionID,
	})
	return &SigningState{State: SigningSigned}, nil
}

// ClearSignature discards the stashed signature so the visitor can redraw.
func (s *Service) ClearSignature(ctx context.Context, sessionID, slug string) (*SigningState, error) {
	in, err := s.introducers.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadStash(ctx, sessionID, in.Slug)
	if err != nil {
		return nil, err
	}
	if snap.Submitted() {
		return nil, domainerrors.New(domainerrors.CodeConflict, "claim already submitted")
	}

	snap.Signature = ""
	if err := s.drafts.Stash(ctx, sessionID, in.Slug, snap); err != nil {
		return nil, fmt.Errorf("stash signature: %w", err)
	}
	return &SigningState{State: SigningUnsigned}, nil
}

// Submit turns the signed, stashed form into a stored claim. The terms must
// be accepted in the same request. Concurrent submits for the same session
// coalesce into one; a repeat submit after success is refused.
func (s *Service) Submit(ctx context.Context, sessionID, slug string, termsAccepted bool) (*claims.Claim, error) {
	in, err := s.introducers.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !termsAccepted {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "terms must be accepted")
	}

	key := sessionID + ":" + in.Slug
	result, err, _ := s.submits.Do(key, func() (any, error) {
		s.markSubmitting(key, true)
		defer s.markSubmitting(key, false)
		return s.submit(ctx, sessionID, in.Slug)
	})
	if err != nil {
		return nil, err
	}
	return result.(*claims.Claim), nil
}

func (s *Service) markSubmitting(key string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.inflight[key] = struct{}{}
	} else {
		delete(s.inflight, key)
	}
}

func (s *Service) isSubmitting(sessionID, slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[sessionID+":"+slug]
	return ok
}

func (s *Service) submit(ctx context.Context, sessionID, slug string) (*claims.Claim, error) {
	ctx, span := tracer.Start(ctx, "funnel.submit")
	defer span.End()
	span.SetAttributes(attribute.String("introducer", slug))

	snap, err := s.loadStash(ctx, sessionID, slug)
	if err != nil {
		return nil, err
	}
	if snap.Submitted() {
		return nil, domainerrors.New(domainerrors.CodeConflict, "claim already submitted")
	}
	if snap.Signature == "" {
		return nil, domainerrors.New(domainerrors.CodeConflict, "signature is required before submission")
	}

	f := snap.Fields
	claim, err := s.claims.Create(ctx, claims.CreateInput{
		Introducer:       slug,
		Title:            f["title"],
		FirstName:        f["first_name"],
		MiddleName:       f["middle_name"],
		LastName:         f["last_name"],
		DOBDay:           f["dob_day"],
		DOBMonth:         f["dob_month"],
		DOBYear:          f["dob_year"],
		Email:            f["email"],
		Phone:            f["phone"],
		AddressLine1:     f["address_line1"],
		AddressLine2:     f["address_line2"],
		City:             f["city"],
		County:           f["county"],
		Postcode:         f["postcode"],
		HasCarFinance:    f["has_car_finance"],
		MultipleVehicles: f["multiple_vehicles"],
		Signature:        snap.Signature,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("reference", claim.Reference))

	// The draft clears only after the claim is stored; a failed submit
	// leaves everything resumable.
	if err := s.drafts.Clear(ctx, sessionID, slug); err != nil {
		s.logger.WarnContext(ctx, "draft clear failed after submit",
			"error", err,
			"introducer", slug,
		)
	}
	snap.SubmittedAt = claim.SubmittedAt
	snap.Reference = claim.Reference
	if err := s.drafts.Stash(ctx, sessionID, slug, snap); err != nil {
		s.logger.WarnContext(ctx, "stash update failed after submit",
			"error", err,
			"introducer", slug,
		)
	}

	s.publisher.Emit(audit.Event{
		Kind:       audit.KindClaimSubmitted,
		Introducer: slug,
		SessionID:  sessionID,
		Reference:  claim.Reference,
		Detail:     map[string]string{"status": string(claim.Status)},
	})
	return claim, nil
}

// Receipt is the thank-you summary for a submitted claim.
type Receipt struct {
	Reference   string    `json:"reference"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ThankYou returns the receipt for the session's submitted claim.
func (s *Service) ThankYou(ctx context.Context, sessionID, slug string) (*Receipt, error) {
	in, err := s.introducers.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadStash(ctx, sessionID, in.Slug)
	if err != nil {
		return nil, err
	}
	if !snap.Submitted() {
		return nil, domainerrors.New(domainerrors.CodeConflict, "no submitted claim for this session")
	}

	f := snap.Fields
	name := strings.TrimSpace(strings.Join([]string{f["title"], f["first_name"], f["middle_name"], f["last_name"]}, " "))
	name = strings.Join(strings.Fields(name), " ")
	return &Receipt{
		Reference:   snap.Reference,
		FullName:    name,
		Email:       f["email"],
		SubmittedAt: snap.SubmittedAt,
	}, nil
}

func (s *Service) resolveStep(ctx context.Context, slug, stepSlug string) (*introducer.Introducer, step.Step, error) {
	in, err := s.introducers.Resolve(ctx, slug)
	if err != nil {
		return nil, step.Step{}, err
	}
	st, ok := step.Lookup(stepSlug)
	if !ok {
		return nil, step.Step{}, domainerrors.New(domainerrors.CodeNotFound, "unknown step")
	}
	return in, st, nil
}

func (s *Service) loadStash(ctx context.Context, sessionID, slug string) (draft.Snapshot, error) {
	snap, err := s.drafts.LoadStash(ctx, sessionID, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return draft.Snapshot{}, domainerrors.New(domainerrors.CodeConflict, "complete the form before this stage")
		}
		return draft.Snapshot{}, fmt.Errorf("load stash: %w", err)
	}
	return snap, nil
}

func signingState(snap draft.Snapshot) string {
	switch {
	case snap.Submitted():
		return SigningSubmitted
	case snap.Signature != "":
		return SigningSigned
	default:
		return SigningUnsigned
	}
}

// fieldsFor lists the draft fields a step owns.
func fieldsFor(st step.Step) []string {
	switch st.Kind {
	case step.KindChoice:
		return []string{st.Field}
	case step.KindDate:
		return []string{"dob_day", "dob_month", "dob_year"}
	case step.KindAddress:
		return []string{"postcode", "address_line1", "address_line2", "city", "county"}
	case step.KindName:
		return []string{"title", "first_name", "middle_name", "last_name"}
	case step.KindContact:
		return []string{"email", "phone"}
	default:
		return nil
	}
}

func restrict(st step.Step, fields map[string]string) map[string]string {
	allowed := make(map[string]struct{})
	for _, f := range fieldsFor(st) {
		allowed[f] = struct{}{}
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if _, ok := allowed[k]; ok {
			out[k] = v
		}
	}
	return out
}
