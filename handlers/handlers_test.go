package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clementus360/coaching-portal/auth"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/memstore"
	"clementus360/coaching-portal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret     = "test-jwt-secret"
	testSigningKey = "calendly-signing-key"
)

var testNow = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	t        *testing.T
	store    *memstore.Store
	mux      *http.ServeMux
	company  types.Lead
	other    types.Lead
	admin    string
	customer string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	company, err := store.InsertLead(ctx, types.Lead{CompanyName: "Acme", Status: types.LeadCustomer})
	require.NoError(t, err)
	other, err := store.InsertLead(ctx, types.Lead{CompanyName: "Globex", Status: types.LeadCustomer})
	require.NoError(t, err)

	adminID, customerID := uuid.NewString(), uuid.NewString()
	store.PutProfile(types.Profile{ID: adminID, Role: types.RoleAdmin, FullName: "Coach"})
	store.PutProfile(types.Profile{ID: customerID, Role: types.RoleCustomer, CompanyID: &company.ID, FullName: "Client"})

	settings := config.Settings{
		JWTSecret:          testSecret,
		CalendlySigningKey: testSigningKey,
		CalendlyTolerance:  3 * time.Minute,
		MaxUploadBytes:     64 << 10,
		Location:           time.UTC,
	}
	h := New(memstore.NewBackend(store, testSecret), settings, WithClock(func() time.Time { return testNow }))

	return &testEnv{
		t:        t,
		store:    store,
		mux:      newTestMux(h),
		company:  company,
		other:    other,
		admin:    signFor(t, adminID),
		customer: signFor(t, customerID),
	}
}

// newTestMux mirrors the production route table.
func newTestMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /leads/capture", h.CaptureLead)
	mux.HandleFunc("POST /webhooks/calendly", h.CalendlyWebhook)
	mux.HandleFunc("GET /leads", h.ListLeads)
	mux.HandleFunc("DELETE /leads/{leadId}", h.DeleteLead)
	mux.HandleFunc("POST /leads/{leadId}/products", h.AnnounceProduct)
	mux.HandleFunc("POST /leads/{leadId}/products/{leadProductId}/activate", h.ActivateLeadProduct)
	mux.HandleFunc("POST /task-templates", h.CreateTaskTemplate)
	mux.HandleFunc("POST /task-templates/{templateId}/apply", h.ApplyTaskTemplate)
	mux.HandleFunc("POST /product-templates", h.CreateProductTemplate)
	mux.HandleFunc("GET /tasks", h.GetTasks)
	mux.HandleFunc("POST /tasks", h.CreateTask)
	mux.HandleFunc("PUT /tasks/reorder", h.ReorderTasks)
	mux.HandleFunc("PATCH /tasks/{taskId}", h.UpdateTask)
	mux.HandleFunc("POST /tasks/{taskId}/subtasks", h.CreateSubtask)
	mux.HandleFunc("PATCH /subtasks/{subtaskId}", h.UpdateSubtask)
	mux.HandleFunc("POST /tasks/{taskId}/comments", h.CreateTaskComment)
	mux.HandleFunc("GET /materials", h.GetMaterials)
	mux.HandleFunc("POST /materials/upload", h.UploadMaterial)
	mux.HandleFunc("GET /materials/{materialId}/download", h.DownloadMaterial)
	mux.HandleFunc("DELETE /materials/{materialId}", h.DeleteMaterial)
	mux.HandleFunc("GET /portal/scorecard", h.GetScorecard)
	return mux
}

func signFor(t *testing.T, subject string) string {
	t.Helper()
	token, err := auth.SignToken(subject, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(e.t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[types.ErrorResponse](t, rec).ErrorMessage
}

func TestAuthentication(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodGet, "/leads", signFor(t, "someone-without-profile"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	forged, err := auth.SignToken(uuid.NewString(), "other-secret", time.Hour)
	require.NoError(t, err)
	rec = e.do(http.MethodGet, "/leads", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodGet, "/leads", e.customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodGet, "/leads", e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[types.GetLeadsResponse](t, rec).Leads, 2)
}

func TestInvalidPathID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPatch, "/tasks/not-a-uuid", e.admin, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid task ID", errorOf(t, rec))
}

func TestCaptureLead(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/leads/capture", "", map[string]any{
		"companyName": "Initech",
		"contactName": "Bill",
		"email":       "bill@initech.example",
		"answers": []map[string]any{
			{"questionId": "q1", "score": 8},
			{"questionId": "q2", "score": 9},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[LeadCaptureResponse](t, rec)
	assert.Equal(t, types.LeadNew, resp.Lead.Status)
	assert.Equal(t, "assessment", resp.Lead.Source)
	require.NotNil(t, resp.Lead.AssessmentScore)
	assert.Equal(t, 17, *resp.Lead.AssessmentScore)
	assert.Equal(t, resp.Assessment.Tier, resp.Lead.AssessmentTier)
	assert.Equal(t, 3, e.store.Count("leads"))
}

func TestCaptureLeadValidation(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/leads/capture", "", map[string]any{
		"companyName": "Initech",
		"contactName": "Bill",
		"email":       "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), "email")
	assert.Equal(t, 2, e.store.Count("leads"))
}
