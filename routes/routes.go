package routes

import (
	"net/http"

	"clementus360/coaching-portal/handlers"
	"clementus360/coaching-portal/metrics"
)

// RegisterAllRoutes registers all application routes
func RegisterAllRoutes(mux *http.ServeMux, h *handlers.Handler) {
	RegisterPublicRoutes(mux, h)
	RegisterLeadRoutes(mux, h)
	RegisterTemplateRoutes(mux, h)
	RegisterTaskRoutes(mux, h)
	RegisterSessionRoutes(mux, h)
	RegisterMaterialRoutes(mux, h)
	RegisterPortalRoutes(mux, h)
}

// RegisterPublicRoutes registers the unauthenticated entry points
func RegisterPublicRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /leads/capture", h.CaptureLead)
	mux.HandleFunc("POST /webhooks/calendly", h.CalendlyWebhook)
}

// RegisterLeadRoutes registers lead and lead product routes
func RegisterLeadRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /leads", h.ListLeads)
	mux.HandleFunc("GET /leads/{leadId}", h.GetLead)
	mux.HandleFunc("PATCH /leads/{leadId}", h.UpdateLead)
	mux.HandleFunc("DELETE /leads/{leadId}", h.DeleteLead)

	mux.HandleFunc("GET /leads/{leadId}/products", h.ListLeadProducts)
	mux.HandleFunc("POST /leads/{leadId}/products", h.AnnounceProduct)
	mux.HandleFunc("POST /leads/{leadId}/products/{leadProductId}/activate", h.ActivateLeadProduct)
	mux.HandleFunc("DELETE /leads/{leadId}/products/{leadProductId}", h.DeleteLeadProduct)
}

// RegisterTemplateRoutes registers task and product template routes
func RegisterTemplateRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /task-templates", h.ListTaskTemplates)
	mux.HandleFunc("POST /task-templates", h.CreateTaskTemplate)
	mux.HandleFunc("GET /task-templates/{templateId}", h.GetTaskTemplate)
	mux.HandleFunc("PATCH /task-templates/{templateId}", h.UpdateTaskTemplate)
	mux.HandleFunc("DELETE /task-templates/{templateId}", h.DeleteTaskTemplate)
	mux.HandleFunc("POST /task-templates/{templateId}/apply", h.ApplyTaskTemplate)

	mux.HandleFunc("GET /product-templates", h.ListProductTemplates)
	mux.HandleFunc("POST /product-templates", h.CreateProductTemplate)
	mux.HandleFunc("GET /product-templates/{templateId}", h.GetProductTemplate)
	mux.HandleFunc("PATCH /product-templates/{templateId}", h.UpdateProductTemplate)
	mux.HandleFunc("DELETE /product-templates/{templateId}", h.DeleteProductTemplate)
}

// RegisterMaterialRoutes registers material upload and download routes
func RegisterMaterialRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /materials", h.GetMaterials)
	mux.HandleFunc("POST /materials/upload", h.UploadMaterial)
	mux.HandleFunc("GET /materials/{materialId}/download", h.DownloadMaterial)
	mux.HandleFunc("DELETE /materials/{materialId}", h.DeleteMaterial)
}

// RegisterPortalRoutes registers customer portal routes
func RegisterPortalRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /portal/scorecard", h.GetScorecard)
}
