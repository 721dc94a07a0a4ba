package handler

import "claimshub/internal/claims"

// CreateClaimResponse confirms a stored claim.
type CreateClaimResponse struct {
	Success bool          `json:"success"`
	Claim   *claims.Claim `json:"claim"`
}

// ListClaimsResponse wraps the dashboard claim listing.
type ListClaimsResponse struct {
	Claims []*claims.Claim `json:"claims"`
}
