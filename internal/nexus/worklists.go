package nexus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/odense-rpa/postmester-medcom/internal/apperr"
	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// Worklist returns the entries of the named worklist, reading up to pages
// pages. Each entry keeps its raw JSON for queueing.
func (c *Client) Worklist(ctx context.Context, name string, pages int) ([]models.WorklistEntry, error) {
	var raw []json.RawMessage
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("name", name).
		SetQueryParam("pages", strconv.Itoa(pages)).
		SetResult(&raw).
		Get("/worklists")

	if err == nil && notFound(resp) {
		return nil, apperr.Infra("get worklist", fmt.Errorf("worklist %q not found", name))
	}
	if err := c.check("get worklist", resp, err); err != nil {
		return nil, err
	}

	entries := make([]models.WorklistEntry, 0, len(raw))
	for _, item := range raw {
		var head struct {
			ID json.Number `json:"id"`
		}
		if err := json.Unmarshal(item, &head); err != nil {
			return nil, apperr.Infra("get worklist", fmt.Errorf("failed to decode worklist entry: %w", err))
		}
		if head.ID == "" {
			continue
		}
		entries = append(entries, models.WorklistEntry{ID: head.ID.String(), Raw: item})
	}
	return entries, nil
}
