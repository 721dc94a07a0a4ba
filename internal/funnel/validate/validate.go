// Package validate holds the pure per-step field validators. Validation
// never fails with an error value: it always returns a (possibly empty) set
// of field messages, and the controller treats a non-empty set as "do not
// advance".
package validate

import (
	"regexp"
	"strconv"
	"time"

	"claimshub/internal/draft"
	"claimshub/internal/funnel/step"
)

// Errors maps field names to human-readable messages. Recomputed from
// scratch on every advancement attempt.
type Errors map[string]string

// Valid reports whether the set is empty.
func (e Errors) Valid() bool { return len(e) == 0 }

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^(07|01|02)\d{8,9}$`)
	whitespacePattern = regexp.MustCompile(`\s`)
)

const minimumAgeYears = 18

// ForStep validates the draft against one step's rules as of now.
func ForStep(st step.Step, d draft.Draft, now time.Time) Errors {
	switch st.Kind {
	case step.KindDate:
		return dateOfBirth(d, now)
	case step.KindAddress:
		return address(d)
	case step.KindName:
		return name(d)
	case step.KindContact:
		return contact(d)
	case step.KindChoice:
		return choice(st, d)
	default:
		return Errors{}
	}
}

func choice(st step.Step, d draft.Draft) Errors {
	errs := Errors{}
	value := d[st.Field]
	if value == "" {
		errs[st.Field] = "Required"
		return errs
	}
	for _, option := range st.Options {
		if value == option {
			return errs
		}
	}
	errs[st.Field] = "Invalid"
	return errs
}

func dateOfBirth(d draft.Draft, now time.Time) Errors {
	errs := Errors{}
	if d["dob_day"] == "" {
		errs["dob_day"] = "Required"
	}
	if d["dob_month"] == "" {
		errs["dob_month"] = "Required"
	}
	if d["dob_year"] == "" {
		errs["dob_year"] = "Required"
	}
	if !errs.Valid() {
		return errs
	}

	day, dayErr := strconv.Atoi(d["dob_day"])
	month, monthErr := strconv.Atoi(d["dob_month"])
	year, yearErr := strconv.Atoi(d["dob_year"])
	if dayErr != nil || day < 1 || day > 31 {
		errs["dob_day"] = "Invalid"
	}
	if monthErr != nil || month < 1 || month > 12 {
		errs["dob_month"] = "Invalid"
	}
	if yearErr != nil || year < 1900 || year > now.Year() {
		errs["dob_year"] = "Invalid"
	}
	if !errs.Valid() {
		return errs
	}

	// time.Date normalizes overflow (31 Feb becomes 2-3 Mar), so a real
	// calendar date round-trips its own day.
	born := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if born.Day() != day || born.Month() != time.Month(month) {
		errs["date_of_birth"] = "Invalid date"
		return errs
	}

	ageYears := now.Sub(born).Hours() / (365.25 * 24)
	if ageYears < minimumAgeYears {
		errs["date_of_birth"] = "Must be 18+"
	}
	return errs
}

func address(d draft.Draft) Errors {
	errs := Errors{}
	if d["postcode"] == "" {
		errs["postcode"] = "Required"
	}
	if d["address_line1"] == "" {
		errs["address_line1"] = "Required"
	}
	if d["city"] == "" {
		errs["city"] = "Required"
	}
	return errs
}

func name(d draft.Draft) Errors {
	errs := Errors{}
	if d["title"] == "" {
		errs["title"] = "Required"
	}
	if d["first_name"] == "" {
		errs["first_name"] = "Required"
	}
	if d["last_name"] == "" {
		errs["last_name"] = "Required"
	}
	return errs
}

func contact(d draft.Draft) Errors {
	errs := Errors{}
	switch {
	case d["email"] == "":
		errs["email"] = "Required"
	case !emailPattern.MatchString(d["email"]):
		errs["email"] = "Invalid"
	}
	switch {
	case d["phone"] == "":
		errs["phone"] = "Required"
	case !phonePattern.MatchString(whitespacePattern.ReplaceAllString(d["phone"], "")):
		errs["phone"] = "Must start 07/01/02"
	}
	return errs
}
