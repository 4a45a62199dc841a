// Package memstore is an in-memory implementation of repository.Repository.
// It backs STORE_DRIVER=memory and the package tests, and supports injecting
// failures into individual operations.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
	"time"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"
)

var _ repository.Repository = (*Store)(nil)

type failure struct {
	after int
	err   error
}

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	leads              *table[types.Lead]
	profiles           *table[types.Profile]
	tasks              *table[types.Task]
	subtasks           *table[types.Subtask]
	taskAttachments    *table[types.TaskAttachment]
	subtaskAttachments *table[types.SubtaskAttachment]
	comments           *table[types.TaskComment]
	sessions           *table[types.Session]
	materials          *table[types.Material]
	tags               *table[types.TaskTag]
	taskTemplates      *table[types.TaskTemplate]
	productTemplates   *table[types.ProductTemplate]
	leadProducts       *table[types.LeadProduct]
	blobs              map[string][]byte

	calls    map[string]int
	failures map[string]failure
}

func New() *Store {
	return &Store{
		now:                time.Now,
		leads:              newTable[types.Lead]("lead"),
		profiles:           newTable[types.Profile]("profile"),
		tasks:              newTable[types.Task]("task"),
		subtasks:           newTable[types.Subtask]("subtask"),
		taskAttachments:    newTable[types.TaskAttachment]("task attachment"),
		subtaskAttachments: newTable[types.SubtaskAttachment]("subtask attachment"),
		comments:           newTable[types.TaskComment]("comment"),
		sessions:           newTable[types.Session]("session"),
		materials:          newTable[types.Material]("material"),
		tags:               newTable[types.TaskTag]("tag"),
		taskTemplates:      newTable[types.TaskTemplate]("template"),
		productTemplates:   newTable[types.ProductTemplate]("product template"),
		leadProducts:       newTable[types.LeadProduct]("lead product"),
		blobs:              make(map[string][]byte),
		calls:              make(map[string]int),
		failures:           make(map[string]failure),
	}
}

// FailOn makes the operation op ("insert subtasks", "delete tasks",
// "upload blobs", ...) fail with err once it has succeeded after times.
func (s *Store) FailOn(op string, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{after: after, err: err}
	s.calls[op] = 0
}

// Calls reports how many times op was attempted.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Count reports how many rows a table currently holds.
func (s *Store) Count(tableName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch tableName {
	case "leads":
		return len(s.leads.rows)
	case "tasks":
		return len(s.tasks.rows)
	case "subtasks":
		return len(s.subtasks.rows)
	case "task_attachments":
		return len(s.taskAttachments.rows)
	case "subtask_attachments":
		return len(s.subtaskAttachments.rows)
	case "task_comments":
		return len(s.comments.rows)
	case "sessions":
		return len(s.sessions.rows)
	case "materials":
		return len(s.materials.rows)
	case "blobs":
		return len(s.blobs)
	}
	return 0
}

// Blob returns a stored file body.
func (s *Store) Blob(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[path]
	return b, ok
}

// PutProfile seeds a user profile.
func (s *Store) PutProfile(p types.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles.put(p.ID, p)
}

// hit counts an attempt at op and returns the injected failure, if due.
// Callers hold s.mu.
func (s *Store) hit(op string) error {
	n := s.calls[op]
	s.calls[op] = n + 1
	if f, ok := s.failures[op]; ok && n >= f.after {
		return f.err
	}
	return nil
}

func insertRow[T any](s *Store, t *table[T], name string, row T, embedded ...string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("insert " + name); err != nil {
		var zero T
		return zero, err
	}
	row, id, err := stamp(row, s.now(), embedded...)
	if err != nil {
		return row, err
	}
	t.put(id, row)
	return row, nil
}

func updateRow[T any](s *Store, t *table[T], name, id string, cols repository.Columns) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("update " + name); err != nil {
		var zero T
		return zero, err
	}
	row, err := t.get(id)
	if err != nil {
		return row, err
	}
	row, err = applyColumns(row, cols)
	if err != nil {
		return row, err
	}
	t.put(id, row)
	return row, nil
}

func getRow[T any](s *Store, t *table[T], id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.get(id)
}

func listRows[T any](s *Store, t *table[T], keep func(T) bool) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.all(keep)
}

// deleteRow removes a row; cascade runs under the lock for dependent rows.
func deleteRow[T any](s *Store, t *table[T], name, id string, cascade func(id string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("delete " + name); err != nil {
		return err
	}
	if !t.remove(id) {
		return apperr.NotFound(t.singular)
	}
	if cascade != nil {
		cascade(id)
	}
	return nil
}

// Leads

func (s *Store) ListLeads(ctx context.Context) ([]types.Lead, error) {
	leads := listRows(s, s.leads, nil)
	sort.SliceStable(leads, func(i, j int) bool {
		return createdAfter(leads[i].CreatedAt, leads[j].CreatedAt)
	})
	return leads, nil
}

func (s *Store) GetLead(ctx context.Context, id string) (types.Lead, error) {
	return getRow(s, s.leads, id)
}

func (s *Store) InsertLead(ctx context.Context, lead types.Lead) (types.Lead, error) {
	return insertRow(s, s.leads, "leads", lead)
}

func (s *Store) UpdateLead(ctx context.Context, id string, cols repository.Columns) (types.Lead, error) {
	return updateRow(s, s.leads, "leads", id, cols)
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	return deleteRow(s, s.leads, "leads", id, func(id string) {
		for _, t := range s.tasks.all(func(t types.Task) bool { return t.CompanyID == id }) {
			s.tasks.remove(t.ID)
			s.cascadeTask(t.ID)
		}
		for _, x := range s.sessions.all(func(x types.Session) bool { return x.CompanyID == id }) {
			s.sessions.remove(x.ID)
		}
		for _, m := range s.materials.all(func(m types.Material) bool { return m.CompanyID == id }) {
			s.materials.remove(m.ID)
		}
		for _, lp := range s.leadProducts.all(func(lp types.LeadProduct) bool { return lp.LeadID == id }) {
			s.leadProducts.remove(lp.ID)
		}
	})
}

// Profiles

func (s *Store) GetProfile(ctx context.Context, userID string) (types.Profile, error) {
	return getRow(s, s.profiles, userID)
}

// Tasks

func (s *Store) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.tasks.all(func(t types.Task) bool {
		return (filter.CompanyID == "" || t.CompanyID == filter.CompanyID) &&
			(filter.Status == "" || t.Status == filter.Status)
	})
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Status != tasks[j].Status {
			return tasks[i].Status < tasks[j].Status
		}
		return tasks[i].Position < tasks[j].Position
	})
	for i := range tasks {
		s.embedTaskChildren(&tasks[i])
	}
	return tasks, nil
}

func (s *Store) embedTaskChildren(t *types.Task) {
	subs := s.subtasks.all(func(x types.Subtask) bool { return x.TaskID == t.ID })
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].Position < subs[j].Position })
	for i := range subs {
		subs[i].Attachments = s.subtaskAttachments.all(func(a types.SubtaskAttachment) bool {
			return a.SubtaskID == subs[i].ID
		})
	}
	t.Subtasks = subs
	t.Attachments = s.taskAttachments.all(func(a types.TaskAttachment) bool { return a.TaskID == t.ID })
}

func (s *Store) GetTask(ctx context.Context, id string) (types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.tasks.get(id)
	if err != nil {
		return t, err
	}
	s.embedTaskChildren(&t)
	return t, nil
}

func (s *Store) InsertTask(ctx context.Context, task types.Task) (types.Task, error) {
	return insertRow(s, s.tasks, "tasks", task, "subtasks", "task_attachments")
}

func (s *Store) UpdateTask(ctx context.Context, id string, cols repository.Columns) (types.Task, error) {
	return updateRow(s, s.tasks, "tasks", id, cols)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return deleteRow(s, s.tasks, "tasks", id, s.cascadeTask)
}

func (s *Store) cascadeTask(taskID string) {
	for _, sub := range s.subtasks.all(func(x types.Subtask) bool { return x.TaskID == taskID }) {
		s.subtasks.remove(sub.ID)
		s.cascadeSubtask(sub.ID)
	}
	for _, a := range s.taskAttachments.all(func(a types.TaskAttachment) bool { return a.TaskID == taskID }) {
		s.taskAttachments.remove(a.ID)
	}
	for _, c := range s.comments.all(func(c types.TaskComment) bool { return c.TaskID == taskID }) {
		s.comments.remove(c.ID)
	}
}

func (s *Store) InsertTaskAttachment(ctx context.Context, a types.TaskAttachment) (types.TaskAttachment, error) {
	return insertRow(s, s.taskAttachments, "task_attachments", a)
}

// Subtasks

func (s *Store) GetSubtask(ctx context.Context, id string) (types.Subtask, error) {
	return getRow(s, s.subtasks, id)
}

func (s *Store) InsertSubtask(ctx context.Context, sub types.Subtask) (types.Subtask, error) {
	return insertRow(s, s.subtasks, "subtasks", sub, "subtask_attachments")
}

func (s *Store) UpdateSubtask(ctx context.Context, id string, cols repository.Columns) (types.Subtask, error) {
	return updateRow(s, s.subtasks, "subtasks", id, cols)
}

func (s *Store) DeleteSubtask(ctx context.Context, id string) error {
	return deleteRow(s, s.subtasks, "subtasks", id, s.cascadeSubtask)
}

func (s *Store) cascadeSubtask(subtaskID string) {
	for _, a := range s.subtaskAttachments.all(func(a types.SubtaskAttachment) bool { return a.SubtaskID == subtaskID }) {
		s.subtaskAttachments.remove(a.ID)
	}
}

func (s *Store) InsertSubtaskAttachment(ctx context.Context, a types.SubtaskAttachment) (types.SubtaskAttachment, error) {
	return insertRow(s, s.subtaskAttachments, "subtask_attachments", a)
}

// Comments

func (s *Store) ListTaskComments(ctx context.Context, taskID string) ([]types.TaskComment, error) {
	return listRows(s, s.comments, func(c types.TaskComment) bool { return c.TaskID == taskID }), nil
}

func (s *Store) InsertTaskComment(ctx context.Context, c types.TaskComment) (types.TaskComment, error) {
	return insertRow(s, s.comments, "task_comments", c)
}

// Sessions

func (s *Store) ListSessions(ctx context.Context, companyID string) ([]types.Session, error) {
	sessions := listRows(s, s.sessions, func(x types.Session) bool {
		return companyID == "" || x.CompanyID == companyID
	})
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Position < sessions[j].Position })
	return sessions, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (types.Session, error) {
	return getRow(s, s.sessions, id)
}

func (s *Store) InsertSession(ctx context.Context, x types.Session) (types.Session, error) {
	return insertRow(s, s.sessions, "sessions", x)
}

func (s *Store) UpdateSession(ctx context.Context, id string, cols repository.Columns) (types.Session, error) {
	return updateRow(s, s.sessions, "sessions", id, cols)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return deleteRow(s, s.sessions, "sessions", id, nil)
}

// Materials

func (s *Store) ListMaterials(ctx context.Context, companyID string) ([]types.Material, error) {
	return listRows(s, s.materials, func(m types.Material) bool {
		return companyID == "" || m.CompanyID == companyID
	}), nil
}

func (s *Store) GetMaterial(ctx context.Context, id string) (types.Material, error) {
	return getRow(s, s.materials, id)
}

func (s *Store) InsertMaterial(ctx context.Context, m types.Material) (types.Material, error) {
	return insertRow(s, s.materials, "materials", m)
}

func (s *Store) UpdateMaterial(ctx context.Context, id string, cols repository.Columns) (types.Material, error) {
	return updateRow(s, s.materials, "materials", id, cols)
}

func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	return deleteRow(s, s.materials, "materials", id, nil)
}

// Tags

func (s *Store) ListTags(ctx context.Context) ([]types.TaskTag, error) {
	return listRows(s, s.tags, nil), nil
}

func (s *Store) InsertTag(ctx context.Context, tag types.TaskTag) (types.TaskTag, error) {
	return insertRow(s, s.tags, "task_tags", tag)
}

func (s *Store) UpdateTag(ctx context.Context, id string, cols repository.Columns) (types.TaskTag, error) {
	return updateRow(s, s.tags, "task_tags", id, cols)
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	return deleteRow(s, s.tags, "task_tags", id, nil)
}

// Templates

func (s *Store) ListTaskTemplates(ctx context.Context) ([]types.TaskTemplate, error) {
	return listRows(s, s.taskTemplates, nil), nil
}

func (s *Store) GetTaskTemplate(ctx context.Context, id string) (types.TaskTemplate, error) {
	return getRow(s, s.taskTemplates, id)
}

func (s *Store) InsertTaskTemplate(ctx context.Context, t types.TaskTemplate) (types.TaskTemplate, error) {
	return insertRow(s, s.taskTemplates, "task_templates", t)
}

func (s *Store) UpdateTaskTemplate(ctx context.Context, id string, cols repository.Columns) (types.TaskTemplate, error) {
	return updateRow(s, s.taskTemplates, "task_templates", id, cols)
}

func (s *Store) DeleteTaskTemplate(ctx context.Context, id string) error {
	return deleteRow(s, s.taskTemplates, "task_templates", id, nil)
}

func (s *Store) TouchTaskTemplate(ctx context.Context, id string, at time.Time) error {
	_, err := updateRow(s, s.taskTemplates, "task_templates", id, repository.Columns{"last_used_at": at})
	return err
}

func (s *Store) ListProductTemplates(ctx context.Context) ([]types.ProductTemplate, error) {
	return listRows(s, s.productTemplates, nil), nil
}

func (s *Store) GetProductTemplate(ctx context.Context, id string) (types.ProductTemplate, error) {
	return getRow(s, s.productTemplates, id)
}

func (s *Store) InsertProductTemplate(ctx context.Context, t types.ProductTemplate) (types.ProductTemplate, error) {
	return insertRow(s, s.productTemplates, "product_templates", t)
}

func (s *Store) UpdateProductTemplate(ctx context.Context, id string, cols repository.Columns) (types.ProductTemplate, error) {
	return updateRow(s, s.productTemplates, "product_templates", id, cols)
}

func (s *Store) DeleteProductTemplate(ctx context.Context, id string) error {
	return deleteRow(s, s.productTemplates, "product_templates", id, nil)
}

// Lead products

func (s *Store) ListLeadProducts(ctx context.Context, leadID string) ([]types.LeadProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lps := s.leadProducts.all(func(lp types.LeadProduct) bool { return lp.LeadID == leadID })
	for i := range lps {
		s.embedProductTemplate(&lps[i])
	}
	return lps, nil
}

func (s *Store) embedProductTemplate(lp *types.LeadProduct) {
	if t, err := s.productTemplates.get(lp.ProductTemplateID); err == nil {
		lp.ProductTemplate = &t
	}
}

func (s *Store) GetLeadProduct(ctx context.Context, id string) (types.LeadProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lp, err := s.leadProducts.get(id)
	if err != nil {
		return lp, err
	}
	s.embedProductTemplate(&lp)
	return lp, nil
}

func (s *Store) InsertLeadProduct(ctx context.Context, lp types.LeadProduct) (types.LeadProduct, error) {
	return insertRow(s, s.leadProducts, "lead_products", lp, "product_templates")
}

func (s *Store) DeleteLeadProduct(ctx context.Context, id string) error {
	return deleteRow(s, s.leadProducts, "lead_products", id, nil)
}

func (s *Store) ClaimLeadProduct(ctx context.Context, id string, at time.Time) (types.LeadProduct, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("update lead_products"); err != nil {
		return types.LeadProduct{}, false, err
	}
	lp, err := s.leadProducts.get(id)
	if err != nil || lp.Status != types.LeadProductAnnounced {
		return types.LeadProduct{}, false, nil
	}
	lp.Status = types.LeadProductActivated
	stamped := at
	lp.ActivatedAt = &stamped
	s.leadProducts.put(id, lp)
	return lp, true, nil
}

func (s *Store) ReleaseLeadProduct(ctx context.Context, id string) error {
	_, err := updateRow(s, s.leadProducts, "lead_products", id, repository.Columns{
		"status":       types.LeadProductAnnounced,
		"activated_at": nil,
	})
	return err
}

// Blobs

func (s *Store) UploadBlob(ctx context.Context, path, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("upload blobs"); err != nil {
		return err
	}
	if _, exists := s.blobs[path]; exists {
		return fmt.Errorf("object %q already exists", path)
	}
	s.blobs[path] = bytes.Clone(data)
	return nil
}

func (s *Store) RemoveBlob(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("remove blobs"); err != nil {
		return err
	}
	delete(s.blobs, path)
	return nil
}

func (s *Store) SignedBlobURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[path]; !ok {
		return "", apperr.NotFound("file")
	}
	exp := s.now().Add(expiresIn).Unix()
	return fmt.Sprintf("memory://blobs/%s?expires=%d", url.PathEscape(path), exp), nil
}

func createdAfter(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return a.After(*b)
}
