// Package expansion materialises task and product templates into per-lead
// tasks, subtasks, attachments, sessions and materials.
package expansion

import (
	"context"
	"fmt"
	"time"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/metrics"
	"clementus360/coaching-portal/types"

	"github.com/sirupsen/logrus"
)

// Store is the slice of the repository the engine needs.
type Store interface {
	GetTaskTemplate(ctx context.Context, id string) (types.TaskTemplate, error)
	TouchTaskTemplate(ctx context.Context, id string, at time.Time) error
	GetProductTemplate(ctx context.Context, id string) (types.ProductTemplate, error)
	GetLeadProduct(ctx context.Context, id string) (types.LeadProduct, error)
	ClaimLeadProduct(ctx context.Context, id string, at time.Time) (types.LeadProduct, bool, error)
	ReleaseLeadProduct(ctx context.Context, id string) error

	InsertTask(ctx context.Context, task types.Task) (types.Task, error)
	InsertSubtask(ctx context.Context, s types.Subtask) (types.Subtask, error)
	InsertTaskAttachment(ctx context.Context, a types.TaskAttachment) (types.TaskAttachment, error)
	InsertSubtaskAttachment(ctx context.Context, a types.SubtaskAttachment) (types.SubtaskAttachment, error)
	InsertSession(ctx context.Context, s types.Session) (types.Session, error)
	InsertMaterial(ctx context.Context, m types.Material) (types.Material, error)

	DeleteTask(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteMaterial(ctx context.Context, id string) error
}

type Engine struct {
	store Store
}

func New(store Store) *Engine {
	return &Engine{store: store}
}

// Result is the outcome of a task template application.
type Result struct {
	Created int
	Tasks   []types.Task
}

// ApplyTaskTemplate expands the template's task definitions for companyID with
// deadlines anchored at now. On any failed insert every row created so far is
// removed again and a storage error naming the failed step is returned.
func (e *Engine) ApplyTaskTemplate(ctx context.Context, templateID, companyID string, now time.Time) (*Result, error) {
	tmpl, err := e.store.GetTaskTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(tmpl.Tasks) == 0 {
		return nil, apperr.ErrEmptyTemplate
	}

	run := e.newRun(companyID, now)
	tasks, err := run.expandTasks(ctx, tmpl.Tasks, nil)
	if err != nil {
		run.rollback(ctx)
		metrics.Expansions.WithLabelValues("task_template", "failed").Inc()
		return nil, err
	}
	metrics.Expansions.WithLabelValues("task_template", "ok").Inc()

	if err := e.store.TouchTaskTemplate(ctx, templateID, now); err != nil {
		config.Logger.WithField("template_id", templateID).Warn("Failed to update template last_used_at:", err)
	}

	return &Result{Created: len(tasks), Tasks: tasks}, nil
}

// ActivateLeadProduct expands the product template attached to the lead
// product and leaves it activated. The claim happens before any insert, so a
// second concurrent activation fails with ErrAlreadyActivated instead of
// duplicating rows.
func (e *Engine) ActivateLeadProduct(ctx context.Context, leadProductID string, now time.Time) (types.LeadProduct, error) {
	lp, err := e.store.GetLeadProduct(ctx, leadProductID)
	if err != nil {
		return types.LeadProduct{}, err
	}
	if lp.Status == types.LeadProductActivated {
		return types.LeadProduct{}, apperr.ErrAlreadyActivated
	}

	tmpl := lp.ProductTemplate
	if tmpl == nil {
		t, err := e.store.GetProductTemplate(ctx, lp.ProductTemplateID)
		if err != nil {
			return types.LeadProduct{}, err
		}
		tmpl = &t
	}

	claimed, ok, err := e.store.ClaimLeadProduct(ctx, leadProductID, now)
	if err != nil {
		return types.LeadProduct{}, apperr.Storage("lead_products.claim", err)
	}
	if !ok {
		return types.LeadProduct{}, apperr.ErrAlreadyActivated
	}

	run := e.newRun(lp.LeadID, now)
	if err := run.expandProduct(ctx, *tmpl); err != nil {
		run.rollback(ctx)
		if rerr := e.store.ReleaseLeadProduct(ctx, leadProductID); rerr != nil {
			config.Logger.WithField("lead_product_id", leadProductID).Error("Failed to release lead product claim:", rerr)
		}
		metrics.Expansions.WithLabelValues("product_template", "failed").Inc()
		return types.LeadProduct{}, err
	}
	metrics.Expansions.WithLabelValues("product_template", "ok").Inc()

	claimed.ProductTemplate = tmpl
	return claimed, nil
}

// run holds the state of one expansion: the target company, the deadline
// anchor and the undo log.
type run struct {
	store     Store
	companyID string
	now       time.Time
	undo      []undoStep
}

type undoStep struct {
	what string
	id   string
	fn   func(ctx context.Context, id string) error
}

func (e *Engine) newRun(companyID string, now time.Time) *run {
	return &run{store: e.store, companyID: companyID, now: now}
}

func (r *run) record(what, id string, fn func(ctx context.Context, id string) error) {
	r.undo = append(r.undo, undoStep{what: what, id: id, fn: fn})
}

// rollback deletes recorded parent rows newest first. Deleting a task takes
// its subtasks and attachments with it.
func (r *run) rollback(ctx context.Context) {
	for i := len(r.undo) - 1; i >= 0; i-- {
		step := r.undo[i]
		if err := step.fn(ctx, step.id); err != nil {
			config.Logger.WithFields(logrus.Fields{
				"table": step.what,
				"id":    step.id,
			}).Error("Rollback failed, row left behind:", err)
		}
	}
	r.undo = nil
}

func (r *run) expandTasks(ctx context.Context, defs []types.TaskDefinition, fallbackTag *string) ([]types.Task, error) {
	created := make([]types.Task, 0, len(defs))

	for i, def := range defs {
		status := def.Status
		if status == "" {
			status = types.TaskStatusTodo
		}
		tag := def.TagID
		if tag == nil {
			tag = fallbackTag
		}

		task, err := r.store.InsertTask(ctx, types.Task{
			CompanyID:   r.companyID,
			Title:       def.Title,
			Description: def.Description,
			Status:      status,
			TagID:       tag,
			Position:    i,
			Deadline:    ResolveDeadline(r.now, def.DeadlineOffsetDays),
		})
		if err != nil {
			return nil, apperr.Storage(fmt.Sprintf("tasks[%d]", i), err)
		}
		r.record("tasks", task.ID, r.store.DeleteTask)
		metrics.RowsCreated.WithLabelValues("tasks").Inc()

		for j, sd := range def.Subtasks {
			sub, err := r.store.InsertSubtask(ctx, types.Subtask{
				TaskID:   task.ID,
				Title:    sd.Title,
				Position: j,
				Deadline: ResolveDeadline(r.now, sd.DeadlineOffsetDays),
			})
			if err != nil {
				return nil, apperr.Storage(fmt.Sprintf("tasks[%d].subtasks[%d]", i, j), err)
			}
			metrics.RowsCreated.WithLabelValues("subtasks").Inc()

			for k, ad := range sd.Attachments {
				if _, err := r.store.InsertSubtaskAttachment(ctx, types.SubtaskAttachment{
					SubtaskID: sub.ID,
					Label:     ad.Label,
					URL:       ad.URL,
					Type:      ad.Type,
				}); err != nil {
					return nil, apperr.Storage(fmt.Sprintf("tasks[%d].subtasks[%d].attachments[%d]", i, j, k), err)
				}
				metrics.RowsCreated.WithLabelValues("subtask_attachments").Inc()
			}
		}

		for k, ad := range def.Attachments {
			if _, err := r.store.InsertTaskAttachment(ctx, types.TaskAttachment{
				TaskID: task.ID,
				Label:  ad.Label,
				URL:    ad.URL,
				Type:   ad.Type,
			}); err != nil {
				return nil, apperr.Storage(fmt.Sprintf("tasks[%d].attachments[%d]", i, k), err)
			}
			metrics.RowsCreated.WithLabelValues("task_attachments").Inc()
		}

		created = append(created, task)
	}

	return created, nil
}

// expandProduct creates tasks, then sessions, then materials.
func (r *run) expandProduct(ctx context.Context, tmpl types.ProductTemplate) error {
	if _, err := r.expandTasks(ctx, tmpl.Tasks, tmpl.TagID); err != nil {
		return err
	}

	for i, def := range tmpl.Sessions {
		s, err := r.store.InsertSession(ctx, types.Session{
			CompanyID:       r.companyID,
			Title:           def.Title,
			Description:     def.Description,
			CalendlyURL:     def.CalendlyURL,
			ShowOnDashboard: def.ShowOnDashboard,
			Status:          types.SessionBookingOpen,
			Position:        i,
		})
		if err != nil {
			return apperr.Storage(fmt.Sprintf("sessions[%d]", i), err)
		}
		r.record("sessions", s.ID, r.store.DeleteSession)
		metrics.RowsCreated.WithLabelValues("sessions").Inc()
	}

	for i, def := range tmpl.Materials {
		m, err := r.store.InsertMaterial(ctx, types.Material{
			CompanyID:     r.companyID,
			Title:         def.Title,
			Description:   def.Description,
			Type:          def.Type,
			TagID:         tmpl.TagID,
			IsPlaceholder: true,
		})
		if err != nil {
			return apperr.Storage(fmt.Sprintf("materials[%d]", i), err)
		}
		r.record("materials", m.ID, r.store.DeleteMaterial)
		metrics.RowsCreated.WithLabelValues("materials").Inc()
	}

	return nil
}
