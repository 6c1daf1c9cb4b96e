package nexus

import (
	"context"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// FindOrganizationByName returns the organization whose name equals name
// exactly, or nil when the directory has none
func (c *Client) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	var organizations []models.Organization
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("name", name).
		SetResult(&organizations).
		Get("/organizations")

	if err == nil && notFound(resp) {
		return nil, nil
	}
	if err := c.check("find organization", resp, err); err != nil {
		return nil, err
	}

	for i := range organizations {
		if organizations[i].Name == name {
			return &organizations[i], nil
		}
	}
	return nil, nil
}

type addOrganizationRequest struct {
	OrganizationID string `json:"organizationId"`
}

// AddCitizenToOrganization opens a membership of the citizen in org
func (c *Client) AddCitizenToOrganization(ctx context.Context, citizen *models.Citizen, org *models.Organization) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", citizen.ID.String()).
		SetBody(addOrganizationRequest{OrganizationID: org.ID.String()}).
		Post("/patients/{id}/organizations")

	return c.check("add citizen to organization", resp, err)
}
