// Package export renders a stored claim as a plain-text document the
// claimant can download and keep.
package export

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"claimshub/internal/claims"
)

var documentTemplate = template.Must(template.New("claim").Parse(
	`CLAIM SUBMISSION RECORD
=======================

Reference:      {{.Reference}}
Submitted:      {{.SubmittedAt}}
Introducer:     {{.Introducer}}
Status:         {{.Status}}

APPLICANT
---------
Name:           {{.FullName}}
Date of birth:  {{.DateOfBirth}}
Email:          {{.Email}}
Phone:          {{.Phone}}

ADDRESS
-------
{{.AddressLine1}}
{{- if .AddressLine2}}
{{.AddressLine2}}
{{- end}}
{{.City}}
{{- if .County}}
{{.County}}
{{- end}}
{{.Postcode}}

CLAIM DETAILS
-------------
Car finance held:    {{.HasCarFinance}}
Multiple vehicles:   {{.MultipleVehicles}}
Signature captured:  {{.SignatureCaptured}}

Keep this document for your records. Your reference number is quoted in
all correspondence about this claim.
`))

type documentData struct {
	Reference         string
	SubmittedAt       string
	Introducer        string
	Status            string
	FullName          string
	DateOfBirth       string
	Email             string
	Phone             string
	AddressLine1      string
	AddressLine2      string
	City              string
	County            string
	Postcode          string
	HasCarFinance     string
	MultipleVehicles  string
	SignatureCaptured string
}

// Render produces the downloadable document for a claim.
func Render(claim *claims.Claim) (string, error) {
	captured := "No"
	if claim.Signature != "" {
		captured = "Yes"
	}
	data := documentData{
		Reference:         claim.Reference,
		SubmittedAt:       claim.SubmittedAt.UTC().Format(time.RFC1123),
		Introducer:        claim.Introducer,
		Status:            string(claim.Status),
		FullName:          claim.FullName(),
		DateOfBirth:       fmt.Sprintf("%s/%s/%s", claim.DOBDay, claim.DOBMonth, claim.DOBYear),
		Email:             claim.Email,
		Phone:             claim.Phone,
		AddressLine1:      claim.AddressLine1,
		AddressLine2:      claim.AddressLine2,
		City:              claim.City,
		County:            claim.County,
		Postcode:          claim.Postcode,
		HasCarFinance:     claim.HasCarFinance,
		MultipleVehicles:  claim.MultipleVehicles,
		SignatureCaptured: captured,
	}

	var out strings.Builder
	if err := documentTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render claim document: %w", err)
	}
	return out.String(), nil
}

// Filename names the download after the claim reference so repeat exports
// don't collide.
func Filename(claim *claims.Claim) string {
	ref := strings.ToLower(strings.TrimPrefix(claim.Reference, "CLM-"))
	return "claim-" + ref + ".txt"
}
