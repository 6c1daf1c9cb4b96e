package workqueue

import (
	"context"
	"fmt"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// StatusSetter finalizes items
type StatusSetter interface {
	Fail(ctx context.Context, id string, message string) error
	Complete(ctx context.Context, id string) error
}

// Claim exclusive hold on an in-progress item. Release must be called on
// every exit path; it completes the item unless it was failed.
type Claim struct {
	Item     models.QueueItem
	store    StatusSetter
	failed   bool
	released bool
}

// NewClaim wraps a claimed item
func NewClaim(item models.QueueItem, store StatusSetter) *Claim {
	return &Claim{Item: item, store: store}
}

// Fail marks the item failed with message; Release then leaves it failed
func (c *Claim) Fail(ctx context.Context, message string) error {
	if err := c.store.Fail(ctx, c.Item.ID, message); err != nil {
		return err
	}
	c.failed = true
	c.Item.Status = models.ItemStatusFailed
	c.Item.Message = message
	return nil
}

// Failed reports whether Fail succeeded
func (c *Claim) Failed() bool { return c.failed }

// Release ends the claim. A non-nil cause fails the item with its text,
// otherwise the item is completed. Calling Release twice is a no-op.
func (c *Claim) Release(ctx context.Context, cause error) error {
	if c.released {
		return nil
	}
	c.released = true

	if c.failed {
		return nil
	}
	if cause != nil {
		if err := c.Fail(ctx, cause.Error()); err != nil {
			return fmt.Errorf("failed to release work item %s: %w", c.Item.ID, err)
		}
		return nil
	}
	if err := c.store.Complete(ctx, c.Item.ID); err != nil {
		return fmt.Errorf("failed to release work item %s: %w", c.Item.ID, err)
	}
	c.Item.Status = models.ItemStatusCompleted
	return nil
}
