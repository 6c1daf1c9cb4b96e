package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// MockQueue mock of the work queue
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Next(ctx context.Context) (*models.QueueItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueItem), args.Error(1)
}

func (m *MockQueue) Fail(ctx context.Context, id string, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockQueue) Complete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQueue) GetItemsByReference(ctx context.Context, reference string) ([]models.QueueItem, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QueueItem), args.Error(1)
}

func (m *MockQueue) AddItem(ctx context.Context, data json.RawMessage, reference string) (*models.QueueItem, error) {
	args := m.Called(ctx, data, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueItem), args.Error(1)
}

func (m *MockQueue) ClearByStatus(ctx context.Context, status models.ItemStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockCitizenFinder mock of citizen lookup
type MockCitizenFinder struct {
	mock.Mock
}

func (m *MockCitizenFinder) FindCitizen(ctx context.Context, cpr string) (*models.Citizen, error) {
	args := m.Called(ctx, cpr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Citizen), args.Error(1)
}

// MockRuleApplier mock of the ensurer set
type MockRuleApplier struct {
	mock.Mock
}

func (m *MockRuleApplier) Apply(ctx context.Context, citizen *models.Citizen, rule *models.Rule, msg *models.Message) error {
	args := m.Called(ctx, citizen, rule, msg)
	return args.Error(0)
}

// MockTracker mock of the task tracker
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) TrackTask(processName string) error {
	args := m.Called(processName)
	return args.Error(0)
}

// MockWorklistSource mock of the worklist endpoint
type MockWorklistSource struct {
	mock.Mock
}

func (m *MockWorklistSource) Worklist(ctx context.Context, name string, pages int) ([]models.WorklistEntry, error) {
	args := m.Called(ctx, name, pages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WorklistEntry), args.Error(1)
}
