package ensurer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// OrganizationEnsurer keeps the citizen in the rule's organization
type OrganizationEnsurer struct {
	backend  OrganizationBackend
	reporter Reporter
	logger   *zap.Logger
}

// NewOrganizationEnsurer creates the ensurer
func NewOrganizationEnsurer(backend OrganizationBackend, reporter Reporter, logger *zap.Logger) *OrganizationEnsurer {
	return &OrganizationEnsurer{backend: backend, reporter: reporter, logger: logger}
}

// Ensure adds the citizen to rule.Organization unless the message already
// lists an open membership of that name. An organization missing from the
// directory is skipped.
func (e *OrganizationEnsurer) Ensure(ctx context.Context, citizen *models.Citizen, rule *models.Rule, msg *models.Message) error {
	if rule.Organization == nil {
		return nil
	}
	name := *rule.Organization

	for _, membership := range msg.PatientOrganizations {
		if membership.Organization.Name == name && membership.Open() {
			return nil
		}
	}

	org, err := e.backend.FindOrganizationByName(ctx, name)
	if err != nil {
		return err
	}
	if org == nil {
		e.logger.Info("Organization not found, skipping",
			zap.String("organization", name),
			zap.Int("rule_row", rule.Row),
		)
		return nil
	}

	if err := e.backend.AddCitizenToOrganization(ctx, citizen, org); err != nil {
		return err
	}

	return e.reporter.Report(ctx, audit(citizen, msg, fmt.Sprintf("Tilføjet organisation: %s", name)))
}
