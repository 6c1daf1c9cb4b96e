package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

const worklistName = "MedCom - Korrespondancer: venter + accepterede"

func TestPopulate_SkipsExistingReferences(t *testing.T) {
	queue := new(MockQueue)
	source := new(MockWorklistSource)
	p := NewPopulator(queue, source, worklistName, 10, zap.NewNop())
	ctx := context.Background()

	entries := []models.WorklistEntry{
		{ID: "101", Raw: json.RawMessage(`{"id":101}`)},
		{ID: "102", Raw: json.RawMessage(`{"id":102}`)},
		{ID: "1020", Raw: json.RawMessage(`{"id":1020}`)},
	}
	source.On("Worklist", ctx, worklistName, 10).Return(entries, nil)

	queue.On("GetItemsByReference", ctx, "101").Return([]models.QueueItem{{ID: "item-101", Reference: "101"}}, nil)
	queue.On("GetItemsByReference", ctx, "102").Return([]models.QueueItem{}, nil)
	queue.On("GetItemsByReference", ctx, "1020").Return(nil, nil)
	queue.On("AddItem", ctx, json.RawMessage(`{"id":102}`), "102").Return(&models.QueueItem{ID: "item-102"}, nil)
	queue.On("AddItem", ctx, json.RawMessage(`{"id":1020}`), "1020").Return(&models.QueueItem{ID: "item-1020"}, nil)

	added, err := p.Populate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	queue.AssertExpectations(t)
	queue.AssertNotCalled(t, "AddItem", ctx, mock.Anything, "101")
}

func TestRefresh_ClearsNewItemsFirst(t *testing.T) {
	queue := new(MockQueue)
	source := new(MockWorklistSource)
	p := NewPopulator(queue, source, worklistName, 10, zap.NewNop())
	ctx := context.Background()

	var order []string
	queue.On("ClearByStatus", ctx, models.ItemStatusNew).
		Run(func(mock.Arguments) { order = append(order, "clear") }).
		Return(int64(3), nil)
	source.On("Worklist", ctx, worklistName, 10).
		Run(func(mock.Arguments) { order = append(order, "worklist") }).
		Return([]models.WorklistEntry{}, nil)

	added, err := p.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, []string{"clear", "worklist"}, order)
}

func TestPopulate_WorklistError(t *testing.T) {
	queue := new(MockQueue)
	source := new(MockWorklistSource)
	p := NewPopulator(queue, source, worklistName, 10, zap.NewNop())
	ctx := context.Background()

	source.On("Worklist", ctx, worklistName, 10).Return(nil, errors.New("timeout"))

	_, err := p.Populate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch worklist")
	queue.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
}
