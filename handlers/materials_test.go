package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"clementus360/coaching-portal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	filename    string
	contentType string
	body        []byte
	fields      map[string]string
}

func (e *testEnv) upload(u upload) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range u.fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, u.filename))
	h.Set("Content-Type", u.contentType)
	part, err := mw.CreatePart(h)
	require.NoError(e.t, err)
	_, err = part.Write(u.body)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/materials/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.admin)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

var pdfBody = []byte("%PDF-1.7\n%fake\n")

func TestUploadMaterial(t *testing.T) {
	e := newTestEnv(t)

	rec := e.upload(upload{
		filename:    "Brand Playbook.pdf",
		contentType: "application/pdf",
		body:        pdfBody,
		fields:      map[string]string{"company_id": e.company.ID, "description": "v2"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	m := decode[types.MaterialResponse](t, rec).Material
	assert.Equal(t, "Brand Playbook", m.Title)
	assert.Equal(t, "v2", m.Description)
	assert.Equal(t, "application/pdf", m.MimeType)
	assert.Equal(t, int64(len(pdfBody)), m.FileSize)
	assert.False(t, m.IsPlaceholder)
	assert.True(t, strings.HasPrefix(m.FilePath, e.company.ID+"/"))
	assert.True(t, strings.HasSuffix(m.FilePath, ".pdf"))

	stored, ok := e.store.Blob(m.FilePath)
	require.True(t, ok)
	assert.Equal(t, pdfBody, stored)

	rec = e.do(http.MethodGet, "/materials/"+m.ID+"/download", e.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode[DownloadResponse](t, rec).URL, "memory://blobs/")
}

func TestUploadMaterialRejectsBeforeWriting(t *testing.T) {
	e := newTestEnv(t)

	cases := map[string]upload{
		"png": {
			filename: "logo.png", contentType: "image/png", body: []byte("\x89PNG"),
		},
		"pdf renamed to png": {
			filename: "logo.png", contentType: "application/pdf", body: pdfBody,
		},
		"extension mismatch": {
			filename: "notes.doc", contentType: "application/pdf", body: pdfBody,
		},
		"png disguised as pdf": {
			filename: "logo.pdf", contentType: "application/pdf", body: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
		},
		"missing company": {
			filename: "a.pdf", contentType: "application/pdf", body: pdfBody,
		},
	}
	for name, u := range cases {
		t.Run(name, func(t *testing.T) {
			if name != "missing company" {
				u.fields = map[string]string{"company_id": e.company.ID}
			}
			rec := e.upload(u)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	assert.Zero(t, e.store.Calls("upload blobs"))
	assert.Zero(t, e.store.Count("blobs"))
	assert.Zero(t, e.store.Count("materials"))
}

func TestUploadMaterialTooLarge(t *testing.T) {
	e := newTestEnv(t)

	rec := e.upload(upload{
		filename:    "huge.pdf",
		contentType: "application/pdf",
		body:        bytes.Repeat([]byte("x"), 100<<10),
		fields:      map[string]string{"company_id": e.company.ID},
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, e.store.Calls("upload blobs"))
}

func TestUploadMaterialRemovesFileWhenRowFails(t *testing.T) {
	e := newTestEnv(t)
	e.store.FailOn("insert materials", 0, assert.AnError)

	rec := e.upload(upload{
		filename:    "a.docx",
		contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		body:        append([]byte("PK\x03\x04"), make([]byte, 64)...),
		fields:      map[string]string{"company_id": e.company.ID},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, e.store.Calls("upload blobs"))
	assert.Zero(t, e.store.Count("blobs"))
	assert.Zero(t, e.store.Count("materials"))
}

func TestUploadMaterialFillsPlaceholder(t *testing.T) {
	e := newTestEnv(t)
	placeholder, err := e.store.InsertMaterial(context.Background(), types.Material{
		CompanyID:     e.company.ID,
		Title:         "Playbook",
		Type:          "document",
		IsPlaceholder: true,
	})
	require.NoError(t, err)

	rec := e.do(http.MethodGet, "/materials/"+placeholder.ID+"/download", e.customer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.upload(upload{
		filename:    "playbook.pdf",
		contentType: "application/pdf",
		body:        pdfBody,
		fields:      map[string]string{"company_id": e.company.ID, "material_id": placeholder.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	m := decode[types.MaterialResponse](t, rec).Material
	assert.Equal(t, placeholder.ID, m.ID)
	assert.Equal(t, "Playbook", m.Title)
	assert.False(t, m.IsPlaceholder)
	assert.Equal(t, "playbook.pdf", m.FileName)
	assert.Equal(t, 1, e.store.Count("materials"))

	// A filled placeholder cannot be filled again.
	rec = e.upload(upload{
		filename:    "playbook-v2.pdf",
		contentType: "application/pdf",
		body:        pdfBody,
		fields:      map[string]string{"company_id": e.company.ID, "material_id": placeholder.ID},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, e.store.Count("blobs"))
}

func TestDeleteMaterialRemovesFile(t *testing.T) {
	e := newTestEnv(t)
	rec := e.upload(upload{
		filename:    "a.pdf",
		contentType: "application/pdf",
		body:        pdfBody,
		fields:      map[string]string{"company_id": e.company.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	m := decode[types.MaterialResponse](t, rec).Material

	rec = e.do(http.MethodDelete, "/materials/"+m.ID, e.customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodDelete, "/materials/"+m.ID, e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, e.store.Count("materials"))
	assert.Zero(t, e.store.Count("blobs"))
}

func TestGetMaterialsScopesCustomers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, err := e.store.InsertMaterial(ctx, types.Material{CompanyID: e.company.ID, Title: "Own", IsPlaceholder: true})
	require.NoError(t, err)
	foreign, err := e.store.InsertMaterial(ctx, types.Material{CompanyID: e.other.ID, Title: "Foreign", FilePath: "x/y.pdf"})
	require.NoError(t, err)

	rec := e.do(http.MethodGet, "/materials", e.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	materials := decode[types.GetMaterialsResponse](t, rec).Materials
	require.Len(t, materials, 1)
	assert.Equal(t, "Own", materials[0].Title)

	rec = e.do(http.MethodGet, "/materials/"+foreign.ID+"/download", e.customer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
