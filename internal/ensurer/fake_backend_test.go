package ensurer

import (
	"context"
	"errors"
	"sync"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// fakeBackend in-memory backend whose reads reflect earlier writes
type fakeBackend struct {
	mu            sync.Mutex
	organizations map[string]models.Organization
	memberships   []models.OrganizationMembership
	pathways      []models.Pathway
	objects       map[string]*models.ReferencedObject
	tasks         []models.Task

	added        []string
	createdPaths []models.PathwaySpec
	createdTasks []models.NewTask
	failCreate   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		organizations: map[string]models.Organization{},
		objects:       map[string]*models.ReferencedObject{},
	}
}

func (f *fakeBackend) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.organizations[name]
	if !ok {
		return nil, nil
	}
	return &org, nil
}

func (f *fakeBackend) AddCitizenToOrganization(ctx context.Context, citizen *models.Citizen, org *models.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, org.Name)
	f.memberships = append(f.memberships, models.OrganizationMembership{Organization: *org})
	return nil
}

func (f *fakeBackend) ActivePathways(ctx context.Context, citizen *models.Citizen) ([]models.Pathway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Pathway, len(f.pathways))
	copy(out, f.pathways)
	return out, nil
}

func (f *fakeBackend) CreatePathway(ctx context.Context, citizen *models.Citizen, spec models.PathwaySpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	f.createdPaths = append(f.createdPaths, spec)
	f.pathways = append(f.pathways, models.Pathway{Name: spec.Base})
	if spec.Nested() {
		f.pathways = append(f.pathways, models.Pathway{Name: spec.Sub})
	}
	return nil
}

func (f *fakeBackend) ReferencedObject(ctx context.Context, href string) (*models.ReferencedObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[href]
	if !ok {
		return nil, errors.New("object not found")
	}
	return obj, nil
}

func (f *fakeBackend) ListTasks(ctx context.Context, obj *models.ReferencedObject) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, obj *models.ReferencedObject, task models.NewTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdTasks = append(f.createdTasks, task)
	created := models.Task{Title: task.Title, Type: models.TaskType{Name: task.TaskType}}
	if task.ResponsibleOrganization != "" {
		created.OrganizationAssignee = &models.Assignee{DisplayName: task.ResponsibleOrganization}
	}
	f.tasks = append(f.tasks, created)
	return nil
}

// fakeReporter collects audit records
type fakeReporter struct {
	records []models.AuditRecord
	err     error
}

func (r *fakeReporter) Report(ctx context.Context, record models.AuditRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}
