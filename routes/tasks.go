package routes

import (
	"net/http"

	"clementus360/coaching-portal/handlers"
)

// RegisterTaskRoutes registers all task-related routes
func RegisterTaskRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /tasks", h.GetTasks)
	mux.HandleFunc("POST /tasks", h.CreateTask)
	mux.HandleFunc("PUT /tasks/reorder", h.ReorderTasks)
	mux.HandleFunc("PATCH /tasks/{taskId}", h.UpdateTask)
	mux.HandleFunc("DELETE /tasks/{taskId}", h.DeleteTask)

	mux.HandleFunc("POST /tasks/{taskId}/subtasks", h.CreateSubtask)
	mux.HandleFunc("PATCH /subtasks/{subtaskId}", h.UpdateSubtask)
	mux.HandleFunc("DELETE /subtasks/{subtaskId}", h.DeleteSubtask)

	mux.HandleFunc("GET /tasks/{taskId}/comments", h.GetTaskComments)
	mux.HandleFunc("POST /tasks/{taskId}/comments", h.CreateTaskComment)

	mux.HandleFunc("GET /tags", h.ListTags)
	mux.HandleFunc("POST /tags", h.CreateTag)
	mux.HandleFunc("PATCH /tags/{tagId}", h.UpdateTag)
	mux.HandleFunc("DELETE /tags/{tagId}", h.DeleteTag)
}
