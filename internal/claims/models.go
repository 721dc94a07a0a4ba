// Package claims owns the final claim record: the immutable, timestamped
// copy of a completed draft plus its signature artifact, created exactly
// once per successful submission.
package claims

import (
	"fmt"
	"time"
)

// Status classifies a stored claim for dashboard reporting.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusPending   Status = "pending"
	StatusDuplicate Status = "duplicate"
	StatusRejected  Status = "rejected"
)

// Claim is the final record handed to persistence. Field names mirror the
// intake form so exports and the dashboard read naturally.
type Claim struct {
	ID         string `json:"id"`
	Reference  string `json:"reference"`
	Introducer string `json:"introducer"`

	Title      string `json:"title"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`

	DOBDay   string `json:"dob_day"`
	DOBMonth string `json:"dob_month"`
	DOBYear  string `json:"dob_year"`

	Email string `json:"email"`
	Phone string `json:"phone"`

	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	County       string `json:"county"`
	Postcode     string `json:"postcode"`

	HasCarFinance    string `json:"has_car_finance"`
	MultipleVehicles string `json:"multiple_vehicles"`

	// Signature is a data:image/png;base64 artifact.
	Signature string `json:"signature,omitempty"`

	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// FullName renders the display name used by exports and the dashboard.
func (c *Claim) FullName() string {
	name := c.Title + " " + c.FirstName
	if c.MiddleName != "" {
		name += " " + c.MiddleName
	}
	return name + " " + c.LastName
}

// NewReference generates a claim reference in the established CLM-<millis>
// format.
func NewReference(now time.Time) string {
	return fmt.Sprintf("CLM-%d", now.UnixMilli())
}
