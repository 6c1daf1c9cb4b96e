package nexus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// FindCitizen looks a citizen up by normalized CPR. It returns nil, nil when
// the backend has no such citizen.
func (c *Client) FindCitizen(ctx context.Context, cpr string) (*models.Citizen, error) {
	var citizen models.Citizen
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("cpr", cpr).
		SetResult(&citizen).
		Get("/patients")

	if err == nil && notFound(resp) {
		return nil, nil
	}
	if err := c.check("find citizen", resp, err); err != nil {
		return nil, err
	}
	if citizen.ID == "" {
		return nil, nil
	}

	c.logger.Debug("Citizen resolved", zap.String("citizen_id", citizen.ID.String()))
	return &citizen, nil
}

// ActivePathways lists the citizen's active pathways
func (c *Client) ActivePathways(ctx context.Context, citizen *models.Citizen) ([]models.Pathway, error) {
	var pathways []models.Pathway
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", citizen.ID.String()).
		SetQueryParam("active", "true").
		SetResult(&pathways).
		Get("/patients/{id}/pathways")

	if err := c.check("get active pathways", resp, err); err != nil {
		return nil, err
	}
	return pathways, nil
}

type createPathwayRequest struct {
	BasePathway string `json:"basePathway"`
	Pathway     string `json:"pathway,omitempty"`
}

// CreatePathway enrolls the citizen in spec.Base, nesting spec.Sub under it
// when set
func (c *Client) CreatePathway(ctx context.Context, citizen *models.Citizen, spec models.PathwaySpec) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", citizen.ID.String()).
		SetBody(createPathwayRequest{BasePathway: spec.Base, Pathway: spec.Sub}).
		Post("/patients/{id}/pathways")

	if err := c.check(fmt.Sprintf("create pathway %q", spec.Base), resp, err); err != nil {
		return err
	}
	return nil
}
