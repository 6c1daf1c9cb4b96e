package ensurer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/apperr"
	"github.com/odense-rpa/postmester-medcom/internal/models"
	"github.com/odense-rpa/postmester-medcom/internal/rules"
)

const dateLayout = "2006-01-02"

// TaskEnsurer creates the rule's follow-up task on the message
type TaskEnsurer struct {
	backend  TaskBackend
	reporter Reporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskEnsurer creates the ensurer. now supplies today's date.
func NewTaskEnsurer(backend TaskBackend, reporter Reporter, logger *zap.Logger, now func() time.Time) *TaskEnsurer {
	return &TaskEnsurer{backend: backend, reporter: reporter, logger: logger, now: now}
}

// Ensure creates a task of rule.TaskType assigned to rule.Organization on
// the message's referenced object, unless one with the same type and
// assignee exists. A rule without an organization never matches an existing
// task.
func (e *TaskEnsurer) Ensure(ctx context.Context, citizen *models.Citizen, rule *models.Rule, msg *models.Message) error {
	if rule.TaskType == nil {
		return nil
	}
	taskType := *rule.TaskType

	href := msg.Links.Href("referencedObject")
	if href == "" {
		return apperr.Domainf("ensure task", "message %q has no referenced object", msg.Name)
	}

	obj, err := e.backend.ReferencedObject(ctx, href)
	if err != nil {
		return err
	}

	existing, err := e.backend.ListTasks(ctx, obj)
	if err != nil {
		return err
	}
	for _, task := range existing {
		if task.Type.Name == taskType && assignedTo(task, rule.Organization) {
			return nil
		}
	}

	today := e.now()
	if err := e.backend.CreateTask(ctx, obj, models.NewTask{
		TaskType:                taskType,
		Title:                   taskType,
		ResponsibleOrganization: models.Value(rule.Organization),
		StartDate:               today.Format(dateLayout),
		DueDate:                 today.AddDate(0, 0, 1).Format(dateLayout),
	}); err != nil {
		return err
	}

	e.logger.Debug("Task created",
		zap.String("task_type", taskType),
		zap.String("object_id", obj.ID.String()),
	)

	return e.reporter.Report(ctx, audit(citizen, msg,
		fmt.Sprintf("Tilføjet opgave på besked med emne: %s til person: %s", msg.Name, citizen.CPR())))
}

func assignedTo(task models.Task, organization *string) bool {
	if organization == nil {
		return false
	}
	return rules.EqualFold(task.AssigneeName(), *organization)
}
