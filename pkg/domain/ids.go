// Package domain defines the typed query values and identifiers shared across
// the gateway. Parsing enforces validity at the boundary so services never see
// a malformed plate or national ID.
package domain

import (
	"strings"

	dErrors "padron/pkg/domain-errors"
)

// ServiceID identifies one upstream registry service (e.g. "soat", "reniec").
type ServiceID string

func (s ServiceID) String() string { return string(s) }

// AccountID identifies the billing account issuing queries.
type AccountID string

func (a AccountID) String() string { return string(a) }

func (a AccountID) IsEmpty() bool { return a == "" }

// Scope says whether a service is keyed by vehicle plate or by national ID.
type Scope string

const (
	ScopeVehicle Scope = "vehicle"
	ScopePerson  Scope = "person"
)

// ParseScope validates a scope string.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeVehicle, ScopePerson:
		return Scope(s), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown scope: "+s)
}

// QueryField is the request body field an upstream service expects.
type QueryField string

const (
	FieldPlate      QueryField = "placa"
	FieldNationalID QueryField = "dni"
)

const (
	plateLength      = 6
	nationalIDLength = 8
)

// Plate is a vehicle plate, normalized to 6 uppercase alphanumerics.
type Plate string

func (p Plate) String() string { return string(p) }

// ParsePlate strips dashes and spaces, uppercases, and requires exactly six
// alphanumeric characters.
func ParsePlate(raw string) (Plate, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == ' ':
			// separators are cosmetic
		default:
			return "", dErrors.New(dErrors.CodeBadRequest, "plate contains invalid characters")
		}
	}
	if b.Len() != plateLength {
		return "", dErrors.New(dErrors.CodeBadRequest, "plate must have exactly 6 alphanumeric characters")
	}
	return Plate(b.String()), nil
}

// NationalID is an 8-digit national identity document number.
type NationalID string

func (n NationalID) String() string { return string(n) }

// ParseNationalID requires exactly eight digits.
func ParseNationalID(raw string) (NationalID, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != nationalIDLength {
		return "", dErrors.New(dErrors.CodeBadRequest, "national ID must have exactly 8 digits")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeBadRequest, "national ID must contain only digits")
		}
	}
	return NationalID(raw), nil
}

// ExtractNationalID strips every non-digit character and accepts the result
// only when exactly eight digits remain. Used when upstream records carry
// document numbers with formatting noise ("DNI 12345678", "12.345.678").
func ExtractNationalID(raw string) (NationalID, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() != nationalIDLength {
		return "", false
	}
	return NationalID(b.String()), true
}

// ParseValue validates a raw query value against the field type a service
// expects and returns its normalized form.
func ParseValue(field QueryField, raw string) (string, error) {
	switch field {
	case FieldPlate:
		p, err := ParsePlate(raw)
		if err != nil {
			return "", err
		}
		return p.String(), nil
	case FieldNationalID:
		n, err := ParseNationalID(raw)
		if err != nil {
			return "", err
		}
		return n.String(), nil
	}
	return "", dErrors.New(dErrors.CodeInternal, "unknown query field: "+string(field))
}
