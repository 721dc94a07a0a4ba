package handler

import (
	"strings"

	domainerrors "claimshub/pkg/domain-errors"
)

// CreateClaimRequest is the payload the funnel client posts when a completed
// intake is submitted directly through the API.
type CreateClaimRequest struct {
	Introducer string `json:"introducer"`

	Title      string `json:"title"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`

	// DateOfBirth is dd/mm/yyyy; callers may instead send the split
	// components.
	DateOfBirth string `json:"date_of_birth"`
	DOBDay      string `json:"dob_day"`
	DOBMonth    string `json:"dob_month"`
	DOBYear     string `json:"dob_year"`

	Email string `json:"email"`
	Phone string `json:"phone"`

	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	County       string `json:"county"`
	Postcode     string `json:"postcode"`

	HasCarFinance    string `json:"has_car_finance"`
	MultipleVehicles string `json:"multiple_vehicles"`

	Signature string `json:"signature"`
}

func (r *CreateClaimRequest) Validate() error {
	r.Introducer = strings.TrimSpace(r.Introducer)
	if r.Introducer == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "introducer is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	r.Postcode = strings.ToUpper(strings.TrimSpace(r.Postcode))
	return nil
}
