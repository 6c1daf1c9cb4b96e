package nexus

import (
	"context"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// ReferencedObject fetches the detail record behind href. href may be
// absolute or relative to the base URL.
func (c *Client) ReferencedObject(ctx context.Context, href string) (*models.ReferencedObject, error) {
	var obj models.ReferencedObject
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&obj).
		Get(href)

	if err := c.check("get referenced object", resp, err); err != nil {
		return nil, err
	}
	return &obj, nil
}

// ListTasks lists tasks attached to obj
func (c *Client) ListTasks(ctx context.Context, obj *models.ReferencedObject) ([]models.Task, error) {
	var tasks []models.Task
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", obj.ID.String()).
		SetResult(&tasks).
		Get("/objects/{id}/tasks")

	if err := c.check("list tasks", resp, err); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask attaches a new task to obj
func (c *Client) CreateTask(ctx context.Context, obj *models.ReferencedObject, task models.NewTask) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", obj.ID.String()).
		SetBody(task).
		Post("/objects/{id}/tasks")

	return c.check("create task", resp, err)
}
