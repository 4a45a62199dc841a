// Package repository declares the data-access contracts the handlers and the
// expansion engine are written against. Implementations live in the supabase
// and memstore packages.
package repository

import (
	"context"
	"io"
	"time"

	"clementus360/coaching-portal/types"
)

// Columns is a partial update keyed by column name.
type Columns = map[string]any

// TaskFilter narrows a task listing.
type TaskFilter struct {
	CompanyID string
	Status    string
}

type Leads interface {
	ListLeads(ctx context.Context) ([]types.Lead, error)
	GetLead(ctx context.Context, id string) (types.Lead, error)
	InsertLead(ctx context.Context, lead types.Lead) (types.Lead, error)
	UpdateLead(ctx context.Context, id string, cols Columns) (types.Lead, error)
	DeleteLead(ctx context.Context, id string) error
}

type Profiles interface {
	GetProfile(ctx context.Context, userID string) (types.Profile, error)
}

type Tasks interface {
	// ListTasks returns tasks ordered by status then position, with subtasks
	// and attachments embedded.
	ListTasks(ctx context.Context, filter TaskFilter) ([]types.Task, error)
	GetTask(ctx context.Context, id string) (types.Task, error)
	InsertTask(ctx context.Context, task types.Task) (types.Task, error)
	UpdateTask(ctx context.Context, id string, cols Columns) (types.Task, error)
	// DeleteTask removes the task together with its subtasks, attachments and
	// comments.
	DeleteTask(ctx context.Context, id string) error
	InsertTaskAttachment(ctx context.Context, a types.TaskAttachment) (types.TaskAttachment, error)
}

type Subtasks interface {
	GetSubtask(ctx context.Context, id string) (types.Subtask, error)
	InsertSubtask(ctx context.Context, s types.Subtask) (types.Subtask, error)
	UpdateSubtask(ctx context.Context, id string, cols Columns) (types.Subtask, error)
	DeleteSubtask(ctx context.Context, id string) error
	InsertSubtaskAttachment(ctx context.Context, a types.SubtaskAttachment) (types.SubtaskAttachment, error)
}

type Comments interface {
	ListTaskComments(ctx context.Context, taskID string) ([]types.TaskComment, error)
	InsertTaskComment(ctx context.Context, c types.TaskComment) (types.TaskComment, error)
}

type Sessions interface {
	ListSessions(ctx context.Context, companyID string) ([]types.Session, error)
	GetSession(ctx context.Context, id string) (types.Session, error)
	InsertSession(ctx context.Context, s types.Session) (types.Session, error)
	UpdateSession(ctx context.Context, id string, cols Columns) (types.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type Materials interface {
	ListMaterials(ctx context.Context, companyID string) ([]types.Material, error)
	GetMaterial(ctx context.Context, id string) (types.Material, error)
	InsertMaterial(ctx context.Context, m types.Material) (types.Material, error)
	UpdateMaterial(ctx context.Context, id string, cols Columns) (types.Material, error)
	DeleteMaterial(ctx context.Context, id string) error
}

type Tags interface {
	ListTags(ctx context.Context) ([]types.TaskTag, error)
	InsertTag(ctx context.Context, tag types.TaskTag) (types.TaskTag, error)
	UpdateTag(ctx context.Context, id string, cols Columns) (types.TaskTag, error)
	DeleteTag(ctx context.Context, id string) error
}

type Templates interface {
	ListTaskTemplates(ctx context.Context) ([]types.TaskTemplate, error)
	GetTaskTemplate(ctx context.Context, id string) (types.TaskTemplate, error)
	InsertTaskTemplate(ctx context.Context, t types.TaskTemplate) (types.TaskTemplate, error)
	UpdateTaskTemplate(ctx context.Context, id string, cols Columns) (types.TaskTemplate, error)
	DeleteTaskTemplate(ctx context.Context, id string) error
	TouchTaskTemplate(ctx context.Context, id string, at time.Time) error

	ListProductTemplates(ctx context.Context) ([]types.ProductTemplate, error)
	GetProductTemplate(ctx context.Context, id string) (types.ProductTemplate, error)
	InsertProductTemplate(ctx context.Context, t types.ProductTemplate) (types.ProductTemplate, error)
	UpdateProductTemplate(ctx context.Context, id string, cols Columns) (types.ProductTemplate, error)
	DeleteProductTemplate(ctx context.Context, id string) error
}

type LeadProducts interface {
	ListLeadProducts(ctx context.Context, leadID string) ([]types.LeadProduct, error)
	// GetLeadProduct returns the lead product with its template embedded.
	GetLeadProduct(ctx context.Context, id string) (types.LeadProduct, error)
	InsertLeadProduct(ctx context.Context, lp types.LeadProduct) (types.LeadProduct, error)
	DeleteLeadProduct(ctx context.Context, id string) error
	// ClaimLeadProduct moves an announced lead product to activated, stamping
	// activated_at. It reports false when the row was not in the announced
	// state, so only one concurrent caller can win.
	ClaimLeadProduct(ctx context.Context, id string, at time.Time) (types.LeadProduct, bool, error)
	// ReleaseLeadProduct reverts a claim after a failed expansion.
	ReleaseLeadProduct(ctx context.Context, id string) error
}

// Blobs stores material files.
type Blobs interface {
	UploadBlob(ctx context.Context, path, contentType string, body io.Reader) error
	RemoveBlob(ctx context.Context, path string) error
	SignedBlobURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
}

type Repository interface {
	Leads
	Profiles
	Tasks
	Subtasks
	Comments
	Sessions
	Materials
	Tags
	Templates
	LeadProducts
	Blobs
}
