package models

import "encoding/json"

// ReferencedObject detail record a message points at
type ReferencedObject struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"name,omitempty"`
	Links Links       `json:"_links,omitempty"`
}

// Task existing task on a referenced object
type Task struct {
	ID                   json.Number `json:"id,omitempty"`
	Title                string      `json:"title"`
	Type                 TaskType    `json:"type"`
	OrganizationAssignee *Assignee   `json:"organizationAssignee"`
}

// TaskType task type reference
type TaskType struct {
	Name string `json:"name"`
}

// Assignee organization responsible for a task
type Assignee struct {
	DisplayName string `json:"displayName"`
}

// AssigneeName returns the assignee display name or ""
func (t *Task) AssigneeName() string {
	if t.OrganizationAssignee == nil {
		return ""
	}
	return t.OrganizationAssignee.DisplayName
}

// NewTask request body for task creation. Dates are YYYY-MM-DD.
type NewTask struct {
	TaskType                string `json:"taskType"`
	Title                   string `json:"title"`
	ResponsibleOrganization string `json:"responsibleOrganization,omitempty"`
	StartDate               string `json:"startDate"`
	DueDate                 string `json:"dueDate"`
}
