package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"
)

// Updater is a typed PATCH body. Each role gets its own type so a field the
// role may not touch fails decoding instead of being silently dropped.
type Updater interface {
	Columns() repository.Columns
}

type AdminTaskUpdate struct {
	Title       *string              `json:"title" validate:"omitempty,min=1"`
	Description *string              `json:"description"`
	Status      *string              `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	TagID       Nullable[string]     `json:"tagId"`
	Position    *int                 `json:"position" validate:"omitempty,gte=0"`
	Deadline    Nullable[civil.Date] `json:"deadline"`
}

func (u AdminTaskUpdate) Columns() repository.Columns {
	cols := repository.Columns{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.TagID.Set {
		cols["tag_id"] = u.TagID.column()
	}
	if u.Position != nil {
		cols["position"] = *u.Position
	}
	if u.Deadline.Set {
		cols["deadline"] = dateColumn(u.Deadline)
	}
	return cols
}

// CustomerTaskUpdate moves a task between Kanban columns.
type CustomerTaskUpdate struct {
	Status *string `json:"status" validate:"required,oneof=todo in_progress done"`
}

func (u CustomerTaskUpdate) Columns() repository.Columns {
	return repository.Columns{"status": *u.Status}
}

type AdminSubtaskUpdate struct {
	Title    *string              `json:"title" validate:"omitempty,min=1"`
	IsDone   *bool                `json:"isDone"`
	Position *int                 `json:"position" validate:"omitempty,gte=0"`
	Deadline Nullable[civil.Date] `json:"deadline"`
}

func (u AdminSubtaskUpdate) Columns() repository.Columns {
	cols := repository.Columns{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.IsDone != nil {
		cols["is_done"] = *u.IsDone
	}
	if u.Position != nil {
		cols["position"] = *u.Position
	}
	if u.Deadline.Set {
		cols["deadline"] = dateColumn(u.Deadline)
	}
	return cols
}

// CustomerSubtaskUpdate only ticks a subtask on or off.
type CustomerSubtaskUpdate struct {
	IsDone *bool `json:"isDone" validate:"required"`
}

func (u CustomerSubtaskUpdate) Columns() repository.Columns {
	return repository.Columns{"is_done": *u.IsDone}
}

type SessionUpdate struct {
	Title           *string `json:"title" validate:"omitempty,min=1"`
	Description     *string `json:"description"`
	CalendlyURL     *string `json:"calendlyUrl" validate:"omitempty,url"`
	ShowOnDashboard *bool   `json:"showOnDashboard"`
	Status          *string `json:"status" validate:"omitempty,oneof=booking_open booked canceled completed"`
	Position        *int    `json:"position" validate:"omitempty,gte=0"`
}

func (u SessionUpdate) Columns() repository.Columns {
	cols := repository.Columns{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.CalendlyURL != nil {
		cols["calendly_url"] = *u.CalendlyURL
	}
	if u.ShowOnDashboard != nil {
		cols["show_on_dashboard"] = *u.ShowOnDashboard
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.Position != nil {
		cols["position"] = *u.Position
	}
	return cols
}

type LeadUpdate struct {
	CompanyName *string `json:"companyName" validate:"omitempty,min=1"`
	ContactName *string `json:"contactName"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Status      *string `json:"status" validate:"omitempty,oneof=new contacted qualified customer lost"`
	Notes       *string `json:"notes"`
}

func (u LeadUpdate) Columns() repository.Columns {
	cols := repository.Columns{}
	if u.CompanyName != nil {
		cols["company_name"] = *u.CompanyName
	}
	if u.ContactName != nil {
		cols["contact_name"] = *u.ContactName
	}
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.Phone != nil {
		cols["phone"] = *u.Phone
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.Notes != nil {
		cols["notes"] = *u.Notes
	}
	return cols
}

type TagUpdate struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Color *string `json:"color"`
}

func (u TagUpdate) Columns() repository.Columns {
	cols := repository.Columns{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Color != nil {
		cols["color"] = *u.Color
	}
	return cols
}

type TaskTemplateUpdate struct {
	Name        *string                 `json:"name" validate:"omitempty,min=1"`
	Description *string                 `json:"description"`
	Tasks       *[]types.TaskDefinition `json:"tasks" validate:"omitempty,dive"`
}

func (u TaskTemplateUpdate) Columns() repository.Columns {
	cols := repository.Columns{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Tasks != nil {
		cols["tasks"] = *u.Tasks
	}
	return cols
}

type ProductTemplateUpdate struct {
	Name        *string                     `json:"name" validate:"omitempty,min=1"`
	Description *string                     `json:"description"`
	TagID       Nullable[string]            `json:"tagId"`
	Tasks       *[]types.TaskDefinition     `json:"tasks" validate:"omitempty,dive"`
	Sessions    *[]types.SessionDefinition  `json:"sessions" validate:"omitempty,dive"`
	Materials   *[]types.MaterialDefinition `json:"materials" validate:"omitempty,dive"`
}

func (u ProductTemplateUpdate) Columns() repository.Columns {
	cols := repository.Columns{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.TagID.Set {
		cols["tag_id"] = u.TagID.column()
	}
	if u.Tasks != nil {
		cols["tasks"] = *u.Tasks
	}
	if u.Sessions != nil {
		cols["sessions"] = *u.Sessions
	}
	if u.Materials != nil {
		cols["materials"] = *u.Materials
	}
	return cols
}

// decodeUpdate decodes a PATCH body into u and returns its non-empty column
// set.
func decodeUpdate(r *http.Request, u Updater) (repository.Columns, error) {
	if err := decodeJSON(r, u); err != nil {
		return nil, err
	}
	cols := u.Columns()
	if len(cols) == 0 {
		return nil, apperr.Validation("Empty update payload")
	}
	return cols, nil
}

// dateColumn stores dates in ISO form so every backend sees the same value.
func dateColumn(d Nullable[civil.Date]) any {
	if d.Value == nil {
		return nil
	}
	return d.Value.String()
}
