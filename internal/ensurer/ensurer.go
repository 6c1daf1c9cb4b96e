// Package ensurer holds the idempotent case actions applied when a rule
// matches a message. Each ensurer checks the current state first and only
// mutates (and audits) when the target state is missing.
package ensurer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// Reporter receives audit records
type Reporter interface {
	Report(ctx context.Context, record models.AuditRecord) error
}

// OrganizationBackend organization directory and membership operations
type OrganizationBackend interface {
	FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error)
	AddCitizenToOrganization(ctx context.Context, citizen *models.Citizen, org *models.Organization) error
}

// PathwayBackend care pathway operations
type PathwayBackend interface {
	ActivePathways(ctx context.Context, citizen *models.Citizen) ([]models.Pathway, error)
	CreatePathway(ctx context.Context, citizen *models.Citizen, spec models.PathwaySpec) error
}

// TaskBackend task operations on a message's referenced object
type TaskBackend interface {
	ReferencedObject(ctx context.Context, href string) (*models.ReferencedObject, error)
	ListTasks(ctx context.Context, obj *models.ReferencedObject) ([]models.Task, error)
	CreateTask(ctx context.Context, obj *models.ReferencedObject, task models.NewTask) error
}

// Backend everything the ensurers need; satisfied by *nexus.Client
type Backend interface {
	OrganizationBackend
	PathwayBackend
	TaskBackend
}

// Set runs the three ensurers in their fixed order
type Set struct {
	Organization *OrganizationEnsurer
	Pathway      *PathwayEnsurer
	Task         *TaskEnsurer
}

// NewSet wires all ensurers to one backend and reporter
func NewSet(backend Backend, reporter Reporter, logger *zap.Logger) *Set {
	return &Set{
		Organization: NewOrganizationEnsurer(backend, reporter, logger),
		Pathway:      NewPathwayEnsurer(backend, reporter, logger),
		Task:         NewTaskEnsurer(backend, reporter, logger, time.Now),
	}
}

// Apply ensures organization, then pathways, then task. It stops at the
// first error; actions already applied are kept.
func (s *Set) Apply(ctx context.Context, citizen *models.Citizen, rule *models.Rule, msg *models.Message) error {
	if err := s.Organization.Ensure(ctx, citizen, rule, msg); err != nil {
		return err
	}
	if err := s.Pathway.Ensure(ctx, citizen, rule, msg); err != nil {
		return err
	}
	return s.Task.Ensure(ctx, citizen, rule, msg)
}

func audit(citizen *models.Citizen, msg *models.Message, action string) models.AuditRecord {
	return models.AuditRecord{
		CPR:     citizen.CPR(),
		Subject: msg.Name,
		Action:  action,
	}
}
