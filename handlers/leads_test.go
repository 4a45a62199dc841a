package handlers

import (
	"context"
	"net/http"
	"testing"

	"clementus360/coaching-portal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) productTemplate() types.ProductTemplate {
	e.t.Helper()
	tag, err := e.store.InsertTag(context.Background(), types.TaskTag{Name: "Growth", Color: "#0a0"})
	require.NoError(e.t, err)

	tmpl, err := e.store.InsertProductTemplate(context.Background(), types.ProductTemplate{
		Name:  "Coaching Pro",
		TagID: &tag.ID,
		ProductTemplatePayload: types.ProductTemplatePayload{
			Tasks: []types.TaskDefinition{{
				Title:              "Strategy workshop",
				DeadlineOffsetDays: intp(14),
				Subtasks:           []types.SubtaskDefinition{{Title: "Collect KPIs"}},
			}},
			Sessions:  []types.SessionDefinition{{Title: "Session 1", CalendlyURL: "https://calendly.com/coach/s1"}},
			Materials: []types.MaterialDefinition{{Title: "Playbook", Type: "document"}},
		},
	})
	require.NoError(e.t, err)
	return tmpl
}

func (e *testEnv) announce(tmpl types.ProductTemplate) types.LeadProduct {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/leads/"+e.company.ID+"/products", e.admin, map[string]any{"productTemplateId": tmpl.ID})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	lp := decode[LeadProductResponse](e.t, rec).LeadProduct
	require.Equal(e.t, types.LeadProductAnnounced, lp.Status)
	return lp
}

func TestActivateLeadProduct(t *testing.T) {
	e := newTestEnv(t)
	tmpl := e.productTemplate()
	lp := e.announce(tmpl)

	path := "/leads/" + e.company.ID + "/products/" + lp.ID + "/activate"
	rec := e.do(http.MethodPost, path, e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	activated := decode[types.LeadProduct](t, rec)
	assert.Equal(t, types.LeadProductActivated, activated.Status)
	require.NotNil(t, activated.ActivatedAt)
	assert.True(t, activated.ActivatedAt.Equal(testNow))

	assert.Equal(t, 1, e.store.Count("tasks"))
	assert.Equal(t, 1, e.store.Count("subtasks"))
	assert.Equal(t, 1, e.store.Count("sessions"))
	assert.Equal(t, 1, e.store.Count("materials"))

	materials, err := e.store.ListMaterials(context.Background(), e.company.ID)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.True(t, materials[0].IsPlaceholder)
	assert.Equal(t, tmpl.TagID, materials[0].TagID)

	// A second activation provisions nothing.
	rec = e.do(http.MethodPost, path, e.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already activated", errorOf(t, rec))
	assert.Equal(t, 1, e.store.Count("tasks"))
	assert.Equal(t, 1, e.store.Count("sessions"))
	assert.Equal(t, 1, e.store.Count("materials"))
}

func TestActivateLeadProductWrongLead(t *testing.T) {
	e := newTestEnv(t)
	lp := e.announce(e.productTemplate())

	rec := e.do(http.MethodPost, "/leads/"+e.other.ID+"/products/"+lp.ID+"/activate", e.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, e.store.Count("tasks"))
}

func TestActivateLeadProductFailureCanBeRetried(t *testing.T) {
	e := newTestEnv(t)
	lp := e.announce(e.productTemplate())
	path := "/leads/" + e.company.ID + "/products/" + lp.ID + "/activate"

	e.store.FailOn("insert materials", 0, assert.AnError)
	rec := e.do(http.MethodPost, path, e.admin, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, errorOf(t, rec), "materials[0]")
	assert.Zero(t, e.store.Count("tasks"))
	assert.Zero(t, e.store.Count("sessions"))

	stored, err := e.store.GetLeadProduct(context.Background(), lp.ID)
	require.NoError(t, err)
	assert.Equal(t, types.LeadProductAnnounced, stored.Status)

	e.store.FailOn("insert materials", 1<<30, nil)
	rec = e.do(http.MethodPost, path, e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, e.store.Count("materials"))
}

func TestDeleteLeadCascades(t *testing.T) {
	e := newTestEnv(t)
	lp := e.announce(e.productTemplate())
	rec := e.do(http.MethodPost, "/leads/"+e.company.ID+"/products/"+lp.ID+"/activate", e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodDelete, "/leads/"+e.company.ID, e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Zero(t, e.store.Count("tasks"))
	assert.Zero(t, e.store.Count("subtasks"))
	assert.Zero(t, e.store.Count("sessions"))
	assert.Zero(t, e.store.Count("materials"))
}
