package handlers

import (
	"net/http"
	"slices"
	"time"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/expansion"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"
)

// Backend hands out repositories. Authenticate returns one scoped to the
// caller's credentials; Service returns one that bypasses row-level policies
// and is reserved for unauthenticated entry points such as webhooks.
type Backend interface {
	Authenticate(r *http.Request) (repository.Repository, types.Identity, error)
	Service() repository.Repository
}

type Handler struct {
	backend  Backend
	settings config.Settings
	now      func() time.Time
}

type Option func(*Handler)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func New(backend Backend, settings config.Settings, opts ...Option) *Handler {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.MaxUploadBytes <= 0 {
		settings.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	h := &Handler{backend: backend, settings: settings, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// today is the current instant in the configured business time zone.
func (h *Handler) today() time.Time {
	return h.now().In(h.settings.Location)
}

func (h *Handler) engine(repo repository.Repository) *expansion.Engine {
	return expansion.New(repo)
}

// authorize resolves the caller and checks their role. On failure the
// response has been written and ok is false.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, roles ...types.Role) (repository.Repository, types.Identity, bool) {
	repo, id, err := h.backend.Authenticate(r)
	if err != nil {
		fail(w, r, err)
		return nil, types.Identity{}, false
	}
	if len(roles) > 0 && !slices.Contains(roles, id.Role) {
		fail(w, r, apperr.Forbidden("Insufficient role"))
		return nil, types.Identity{}, false
	}
	return repo, id, true
}

// companyScope picks the company a listing is about. Customers always see
// their own company; admins may pass company_id or, when optional, omit it.
func companyScope(r *http.Request, id types.Identity, required bool) (string, error) {
	if !id.IsAdmin() {
		return id.CompanyID, nil
	}
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" && required {
		return "", apperr.Validation("Missing company_id")
	}
	return companyID, nil
}

// ownTask fetches a task, hiding other companies' tasks from customers.
func ownTask(r *http.Request, repo repository.Repository, id types.Identity, taskID string) (types.Task, error) {
	task, err := repo.GetTask(r.Context(), taskID)
	if err != nil {
		return task, err
	}
	if !id.CanAccessCompany(task.CompanyID) {
		return types.Task{}, apperr.NotFound("task")
	}
	return task, nil
}
