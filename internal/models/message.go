package models

import "encoding/json"

// Message MedCom correspondence payload carried by a queue item
type Message struct {
	ID                   json.Number              `json:"id"`
	Name                 string                   `json:"name"`
	Patients             []Patient                `json:"patients"`
	PatientOrganizations []OrganizationMembership `json:"patientOrganizations"`
	Links                Links                    `json:"_links"`
}

// Patient patient reference on a message
type Patient struct {
	ID                json.Number       `json:"id,omitempty"`
	PatientIdentifier PatientIdentifier `json:"patientIdentifier"`
}

// PatientIdentifier national identifier
type PatientIdentifier struct {
	Type       string `json:"type,omitempty"`
	Identifier string `json:"identifier"`
}

// OrganizationMembership citizen membership as listed on the message
type OrganizationMembership struct {
	Organization       Organization `json:"organization"`
	EffectiveStartDate *string      `json:"effectiveStartDate"`
	EffectiveEndDate   *string      `json:"effectiveEndDate"`
}

// Open reports whether the membership has no end date
func (m OrganizationMembership) Open() bool {
	return m.EffectiveEndDate == nil
}

// Link HAL link
type Link struct {
	Href string `json:"href"`
}

// Links HAL link set keyed by relation
type Links map[string]Link

// Href returns the href of rel or ""
func (l Links) Href(rel string) string {
	if l == nil {
		return ""
	}
	return l[rel].Href
}

// PrimaryPatientIdentifier returns the identifier of the first patient
func (m *Message) PrimaryPatientIdentifier() (string, bool) {
	if len(m.Patients) == 0 || m.Patients[0].PatientIdentifier.Identifier == "" {
		return "", false
	}
	return m.Patients[0].PatientIdentifier.Identifier, true
}
