package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/apperr"
	"github.com/odense-rpa/postmester-medcom/internal/models"
	"github.com/odense-rpa/postmester-medcom/internal/rules"
)

const processName = "Postmester Medcom"

func strPtr(s string) *string {
	return &s
}

func queueItem(id, subject, cpr string) *models.QueueItem {
	data, _ := json.Marshal(map[string]any{
		"id":   json.Number(id),
		"name": subject,
		"patients": []map[string]any{
			{"patientIdentifier": map[string]any{"identifier": cpr}},
		},
	})
	return &models.QueueItem{
		ID:        "item-" + id,
		Reference: id,
		Status:    models.ItemStatusInProgress,
		Data:      data,
	}
}

type processorFixture struct {
	queue    *MockQueue
	citizens *MockCitizenFinder
	applier  *MockRuleApplier
	tracker  *MockTracker
	proc     *Processor
}

func setupProcessor(table *rules.Table) *processorFixture {
	f := &processorFixture{
		queue:    new(MockQueue),
		citizens: new(MockCitizenFinder),
		applier:  new(MockRuleApplier),
		tracker:  new(MockTracker),
	}
	f.proc = NewProcessor(f.queue, f.citizens, f.applier, f.tracker, table, processName, zap.NewNop())
	return f
}

func defaultTable() *rules.Table {
	return rules.NewTable([]models.Rule{
		{Row: 2, Subject: strPtr("Epikrise"), Organization: strPtr("Kardiologi")},
		{Row: 3, Subject: strPtr("Brev"), WildcardSearch: strPtr("Ja"), Pathway: strPtr("Forløb1")},
		{Row: 4, Subject: strPtr("epi"), WildcardSearch: strPtr("Yes"), TaskType: strPtr("Opfølgning")},
	})
}

func testCitizen() *models.Citizen {
	return &models.Citizen{ID: "12", PatientIdentifier: models.PatientIdentifier{Identifier: "0101011234"}}
}

func TestProcessItem_AppliesMatchingRulesInOrder(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()
	item := queueItem("101", "Epikrise", "010101-1234")
	citizen := testCitizen()

	var applied []int
	f.citizens.On("FindCitizen", ctx, "0101011234").Return(citizen, nil)
	f.applier.On("Apply", ctx, citizen, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			applied = append(applied, args.Get(2).(*models.Rule).Row)
		}).
		Return(nil)
	f.tracker.On("TrackTask", processName).Return(nil)
	f.queue.On("Complete", mock.Anything, "item-101").Return(nil)

	outcome, err := f.proc.ProcessItem(ctx, *item)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, outcome)

	assert.Equal(t, []int{2, 4}, applied)
	f.tracker.AssertNumberOfCalls(t, "TrackTask", 2)
	f.queue.AssertExpectations(t)
	f.queue.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessItem_WildcardJaDoesNotMatch(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()
	item := queueItem("102", "Brevsvar", "0101011234")

	f.citizens.On("FindCitizen", ctx, "0101011234").Return(testCitizen(), nil)
	f.queue.On("Complete", mock.Anything, "item-102").Return(nil)

	outcome, err := f.proc.ProcessItem(ctx, *item)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, outcome)

	f.applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.tracker.AssertNotCalled(t, "TrackTask", mock.Anything)
}

func TestProcessItem_CitizenNotFoundIsSkipped(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()
	item := queueItem("103", "Epikrise", "0101011234")

	f.citizens.On("FindCitizen", ctx, "0101011234").Return(nil, nil)
	f.queue.On("Complete", mock.Anything, "item-103").Return(nil)

	outcome, err := f.proc.ProcessItem(ctx, *item)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	f.applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.queue.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
	f.queue.AssertExpectations(t)
}

func TestProcessItem_DomainErrorFailsItem(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()
	item := queueItem("104", "Epikrise", "0101011234")
	citizen := testCitizen()

	domainErr := apperr.Domainf("create task", "task type %q is closed", "Opfølgning")
	f.citizens.On("FindCitizen", ctx, "0101011234").Return(citizen, nil)
	f.applier.On("Apply", ctx, citizen, mock.MatchedBy(func(r *models.Rule) bool { return r.Row == 2 }), mock.Anything).Return(nil)
	f.applier.On("Apply", ctx, citizen, mock.MatchedBy(func(r *models.Rule) bool { return r.Row == 4 }), mock.Anything).Return(domainErr)
	f.tracker.On("TrackTask", processName).Return(nil)
	f.queue.On("Fail", mock.Anything, "item-104", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, `task type "Opfølgning" is closed`)
	})).Return(nil)

	outcome, err := f.proc.ProcessItem(ctx, *item)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome)

	// the first rule's actions stay applied
	f.tracker.AssertNumberOfCalls(t, "TrackTask", 1)
	f.queue.AssertExpectations(t)
	f.queue.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestProcessItem_InfrastructureErrorFailsItemAndPropagates(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()
	item := queueItem("105", "Epikrise", "0101011234")

	f.citizens.On("FindCitizen", ctx, "0101011234").Return(nil, apperr.Infra("find citizen", errors.New("connection refused")))
	f.queue.On("Fail", mock.Anything, "item-105", "find citizen: connection refused").Return(nil)

	outcome, err := f.proc.ProcessItem(ctx, *item)
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.False(t, apperr.IsDomain(err))
	f.queue.AssertExpectations(t)
}

func TestProcessItem_MissingPatientIsDomainError(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()
	item := &models.QueueItem{ID: "item-106", Reference: "106", Data: json.RawMessage(`{"id":106,"name":"Epikrise","patients":[]}`)}

	f.queue.On("Fail", mock.Anything, "item-106", mock.Anything).Return(nil)

	outcome, err := f.proc.ProcessItem(ctx, *item)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	f.citizens.AssertNotCalled(t, "FindCitizen", mock.Anything, mock.Anything)
}

func TestRun_ContinuesAfterDomainError(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()
	first := queueItem("201", "Epikrise", "0101011234")
	second := queueItem("202", "Epikrise", "0202021234")
	third := queueItem("203", "Epikrise", "0303031234")
	citizen := testCitizen()

	f.queue.On("Next", ctx).Return(first, nil).Once()
	f.queue.On("Next", ctx).Return(second, nil).Once()
	f.queue.On("Next", ctx).Return(third, nil).Once()
	f.queue.On("Next", ctx).Return(nil, nil).Once()

	f.citizens.On("FindCitizen", ctx, "0101011234").Return(citizen, nil)
	f.citizens.On("FindCitizen", ctx, "0202021234").Return(nil, nil)
	f.citizens.On("FindCitizen", ctx, "0303031234").Return(citizen, nil)

	f.applier.On("Apply", ctx, citizen, mock.Anything, mock.MatchedBy(func(m *models.Message) bool { return m.ID == "201" })).
		Return(apperr.Domainf("add organization", "citizen is deceased"))
	f.applier.On("Apply", ctx, citizen, mock.Anything, mock.MatchedBy(func(m *models.Message) bool { return m.ID == "203" })).
		Return(nil)
	f.tracker.On("TrackTask", processName).Return(nil)

	f.queue.On("Fail", mock.Anything, "item-201", mock.Anything).Return(nil)
	f.queue.On("Complete", mock.Anything, "item-202").Return(nil)
	f.queue.On("Complete", mock.Anything, "item-203").Return(nil)

	stats, err := f.proc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, RunStats{Processed: 3, Succeeded: 1, Skipped: 1, Failed: 1}, stats)
	f.queue.AssertExpectations(t)
}

func TestRun_AbortsOnInfrastructureError(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()
	first := queueItem("301", "Epikrise", "0101011234")
	citizen := testCitizen()

	f.queue.On("Next", ctx).Return(first, nil).Once()
	f.citizens.On("FindCitizen", ctx, "0101011234").Return(citizen, nil)
	f.applier.On("Apply", ctx, citizen, mock.Anything, mock.Anything).Return(nil)
	f.tracker.On("TrackTask", processName).Return(apperr.Infra("track task", errors.New("not connected")))
	f.queue.On("Fail", mock.Anything, "item-301", mock.Anything).Return(nil)

	stats, err := f.proc.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
	assert.Equal(t, 1, stats.Failed)
	f.queue.AssertNumberOfCalls(t, "Next", 1)
}

func TestRun_ClaimErrorAborts(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx := context.Background()

	f.queue.On("Next", ctx).Return(nil, errors.New("db down"))

	_, err := f.proc.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to claim next work item")
}

func TestRun_CancelledContext(t *testing.T) {
	f := setupProcessor(defaultTable())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.proc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	f.queue.AssertNotCalled(t, "Next", mock.Anything)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "succeeded", OutcomeSucceeded.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}
