// Package draft holds the in-progress answer set for one (session, tenant)
// pair and the short-lived holding-area snapshot consumed by final
// submission. The store is deliberately ephemeral: it mirrors browser
// session storage, not durable persistence.
package draft

import (
	"context"
	"time"
)

// Draft maps field names to entered values. It grows monotonically as steps
// complete and is only ever validated per-step.
type Draft map[string]string

// Clone returns an independent copy.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge overlays changes onto the draft. Empty values are kept: clearing a
// field is a legitimate edit.
func (d Draft) Merge(changes map[string]string) {
	for k, v := range changes {
		d[k] = v
	}
}

// Snapshot is the holding-area copy taken when the linear form completes.
// It carries the signature artifact captured during the signing stage and,
// once submission succeeds, the assigned claim reference.
type Snapshot struct {
	Fields      Draft     `json:"fields"`
	SubmittedAt time.Time `json:"submitted_at"`
	Signature   string    `json:"signature,omitempty"`
	Reference   string    `json:"reference,omitempty"`
}

// Submitted reports whether the snapshot's claim has been stored.
func (s Snapshot) Submitted() bool { return !s.SubmittedAt.IsZero() }

// Store persists drafts and holding-area snapshots keyed by (session, tenant).
//
// Contract:
//   - Load after Save within the same session returns an equivalent draft.
//   - Corrupt or missing draft data loads as an empty draft, never an error.
//   - LoadStash returns sentinel.ErrNotFound when no snapshot exists.
//
// Concurrent tabs sharing a session can race and overwrite each other's
// draft; that is an accepted limitation, not a guarantee.
type Store interface {
	Load(ctx context.Context, sessionID, tenant string) (Draft, error)
	Save(ctx context.Context, sessionID, tenant string, d Draft) error
	Clear(ctx context.Context, sessionID, tenant string) error

	Stash(ctx context.Context, sessionID, tenant string, snap Snapshot) error
	LoadStash(ctx context.Context, sessionID, tenant string) (Snapshot, error)
	ClearStash(ctx context.Context, sessionID, tenant string) error
}

// Storage key prefixes, kept from the browser implementation this replaces.
const (
	formKeyPrefix = "claim_form_"
	dataKeyPrefix = "claim_data_"
)

func formKey(sessionID, tenant string) string {
	return sessionID + ":" + formKeyPrefix + tenant
}

func dataKey(sessionID, tenant string) string {
	return sessionID + ":" + dataKeyPrefix + tenant
}
