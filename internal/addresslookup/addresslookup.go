// Package addresslookup finds candidate addresses for a postcode. The
// upstream provider loads out-of-band, so the service probes its readiness
// for a bounded window and reports degraded, never broken, when the
// provider never comes up. Manual entry always remains possible.
package addresslookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"claimshub/pkg/platform/sentinel"
)

// Candidate is one selectable address.
type Candidate struct {
	Line1    string `json:"address_line1"`
	Line2    string `json:"address_line2,omitempty"`
	City     string `json:"city"`
	County   string `json:"county,omitempty"`
	Postcode string `json:"postcode"`
}

// Provider resolves a postcode to candidates. Ready reports whether the
// provider can currently serve.
type Provider interface {
	Ready(ctx context.Context) bool
	Lookup(ctx context.Context, postcode string) ([]Candidate, error)
}

const (
	probeAttempts = 20
	probeInterval = 200 * time.Millisecond
)

// Service fronts a Provider with the bounded readiness probe. The probe runs
// once; after it concludes, Lookup either serves or returns
// sentinel.ErrUnavailable for the rest of the process lifetime.
type Service struct {
	provider Provider
	logger   *slog.Logger

	probeOnce sync.Once
	ready     bool
}

func NewService(provider Provider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Lookup returns candidates for the postcode, probing provider readiness on
// first use.
func (s *Service) Lookup(ctx context.Context, postcode string) ([]Candidate, error) {
	s.probeOnce.Do(func() { s.ready = s.probe(ctx) })
	if !s.ready {
		return nil, sentinel.ErrUnavailable
	}
	out, err := s.provider.Lookup(ctx, normalizePostcode(postcode))
	if err != nil {
		return nil, fmt.Errorf("lookup postcode: %w", err)
	}
	return out, nil
}

func (s *Service) probe(ctx context.Context) bool {
	for attempt := 0; attempt < probeAttempts; attempt++ {
		if s.provider.Ready(ctx) {
			return true
		}
		select {
		case <-time.After(probeInterval):
		case <-ctx.Done():
			return false
		}
	}
	s.logger.Warn("address lookup provider never became ready, serving degraded")
	return false
}

func normalizePostcode(postcode string) string {
	return strings.ToUpper(strings.TrimSpace(postcode))
}

// HTTPProvider queries a remote address API. Readiness is a HEAD against the
// base URL.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *HTTPProvider) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.baseURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

func (p *HTTPProvider) Lookup(ctx context.Context, postcode string) ([]Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"?postcode="+url.QueryEscape(postcode), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned %d", resp.StatusCode)
	}
	var out []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return out, nil
}

// StaticProvider synthesizes a deterministic candidate list per postcode. It
// is the provider when no upstream is configured, keeping local environments
// fully functional.
type StaticProvider struct{}

func NewStaticProvider() *StaticProvider { return &StaticProvider{} }

func (*StaticProvider) Ready(context.Context) bool { return true }

func (*StaticProvider) Lookup(_ context.Context, postcode string) ([]Candidate, error) {
	streets := []string{"High Street", "Station Road", "Church Lane"}
	out := make([]Candidate, 0, len(streets))
	for i, street := range streets {
		out = append(out, Candidate{
			Line1:    fmt.Sprintf("%d %s", (i+1)*2, street),
			City:     "Leeds",
			County:   "West Yorkshire",
			Postcode: postcode,
		})
	}
	return out, nil
}
