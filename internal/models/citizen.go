package models

import (
	"encoding/json"
	"fmt"
)

// Citizen case-management record of a citizen
type Citizen struct {
	ID                json.Number       `json:"id"`
	FullName          string            `json:"fullName,omitempty"`
	PatientIdentifier PatientIdentifier `json:"patientIdentifier"`
}

// CPR normalized national identifier
func (c *Citizen) CPR() string {
	return c.PatientIdentifier.Identifier
}

// Organization entry in the organization directory
type Organization struct {
	ID   json.Number `json:"id,omitempty"`
	Name string      `json:"name"`
}

// Pathway active care pathway of a citizen
type Pathway struct {
	ID   json.Number `json:"id,omitempty"`
	Name string      `json:"name"`
}

// PathwaySpec one parsed line of a rule's pathway field. Sub is empty for a
// bare base pathway.
type PathwaySpec struct {
	Base string
	Sub  string
}

// Nested reports whether the spec names a sub pathway
func (p PathwaySpec) Nested() bool {
	return p.Sub != ""
}

// NormalizeCPR strips separators and whitespace from a CPR number and
// checks that ten digits remain
func NormalizeCPR(raw string) (string, error) {
	digits := make([]byte, 0, 10)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == '-' || c == ' ' || c == '\t':
		default:
			return "", fmt.Errorf("invalid character %q in CPR", c)
		}
	}
	if len(digits) != 10 {
		return "", fmt.Errorf("CPR must have 10 digits, got %d", len(digits))
	}
	return string(digits), nil
}
