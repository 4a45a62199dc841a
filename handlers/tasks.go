package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"
)

type CreateTaskRequest struct {
	CompanyID   string      `json:"companyId" validate:"required,uuid"`
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	Status      string      `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	TagID       *string     `json:"tagId"`
	Deadline    *civil.Date `json:"deadline"`
	Position    *int        `json:"position" validate:"omitempty,gte=0"`
}

// ReorderTasksRequest lists a Kanban column's tasks in their new order.
type ReorderTasksRequest struct {
	CompanyID string   `json:"companyId" validate:"required,uuid"`
	Status    string   `json:"status" validate:"required,oneof=todo in_progress done"`
	TaskIDs   []string `json:"taskIds" validate:"required,dive,uuid"`
}

type CreateSubtaskRequest struct {
	Title    string      `json:"title" validate:"required"`
	Deadline *civil.Date `json:"deadline"`
	Position *int        `json:"position" validate:"omitempty,gte=0"`
}

type SubtaskResponse struct {
	Success bool          `json:"success"`
	Subtask types.Subtask `json:"subtask"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

type CommentResponse struct {
	Success bool              `json:"success"`
	Comment types.TaskComment `json:"comment"`
}

type GetCommentsResponse struct {
	Success  bool                `json:"success"`
	Comments []types.TaskComment `json:"comments"`
}

func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	companyID, err := companyScope(r, id, false)
	if err != nil {
		fail(w, r, err)
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && !types.ValidTaskStatus(status) {
		fail(w, r, apperr.Validation("Invalid status filter"))
		return
	}

	tasks, err := repo.ListTasks(r.Context(), repository.TaskFilter{CompanyID: companyID, Status: status})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.GetTasksResponse{Success: true, Tasks: tasks})
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Status == "" {
		req.Status = types.TaskStatusTodo
	}

	ctx := r.Context()
	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		// Append to the bottom of the column.
		column, err := repo.ListTasks(ctx, repository.TaskFilter{CompanyID: req.CompanyID, Status: req.Status})
		if err != nil {
			fail(w, r, err)
			return
		}
		position = len(column)
	}

	saved, err := repo.InsertTask(ctx, types.Task{
		CompanyID:   req.CompanyID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		TagID:       req.TagID,
		Position:    position,
		Deadline:    req.Deadline,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, types.TaskResponse{Success: true, Task: saved})
}

// UpdateTask applies a role-specific PATCH. Customers may only move their own
// company's tasks between columns.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	taskID, err := pathID(r, "taskId", "task")
	if err != nil {
		fail(w, r, err)
		return
	}

	var update Updater = &CustomerTaskUpdate{}
	if id.IsAdmin() {
		update = &AdminTaskUpdate{}
	}
	cols, err := decodeUpdate(r, update)
	if err != nil {
		fail(w, r, err)
		return
	}

	if _, err := ownTask(r, repo, id, taskID); err != nil {
		fail(w, r, err)
		return
	}

	updated, err := repo.UpdateTask(r.Context(), taskID, cols)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.TaskResponse{Success: true, Task: updated})
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	taskID, err := pathID(r, "taskId", "task")
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := repo.DeleteTask(r.Context(), taskID); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Task deleted successfully"})
}

// ReorderTasks rewrites positions within one column and answers with the
// column as persisted, which the board renders instead of its local guess.
func (h *Handler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}

	var req ReorderTasksRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	existing, err := repo.ListTasks(ctx, repository.TaskFilter{CompanyID: req.CompanyID})
	if err != nil {
		fail(w, r, err)
		return
	}
	known := make(map[string]types.Task, len(existing))
	for _, t := range existing {
		known[t.ID] = t
	}

	seen := make(map[string]bool, len(req.TaskIDs))
	for _, taskID := range req.TaskIDs {
		if _, ok := known[taskID]; !ok {
			fail(w, r, apperr.NotFound("task "+taskID))
			return
		}
		if seen[taskID] {
			fail(w, r, apperr.Validation("Duplicate task "+taskID))
			return
		}
		seen[taskID] = true
	}

	for i, taskID := range req.TaskIDs {
		t := known[taskID]
		if t.Status == req.Status && t.Position == i {
			continue
		}
		if _, err := repo.UpdateTask(ctx, taskID, repository.Columns{"status": req.Status, "position": i}); err != nil {
			fail(w, r, apperr.Storage("tasks.reorder", err))
			return
		}
	}

	column, err := repo.ListTasks(ctx, repository.TaskFilter{CompanyID: req.CompanyID, Status: req.Status})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.GetTasksResponse{Success: true, Tasks: column})
}

// Subtasks

func (h *Handler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	taskID, err := pathID(r, "taskId", "task")
	if err != nil {
		fail(w, r, err)
		return
	}

	var req CreateSubtaskRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	task, err := repo.GetTask(r.Context(), taskID)
	if err != nil {
		fail(w, r, err)
		return
	}
	position := len(task.Subtasks)
	if req.Position != nil {
		position = *req.Position
	}

	saved, err := repo.InsertSubtask(r.Context(), types.Subtask{
		TaskID:   taskID,
		Title:    req.Title,
		Position: position,
		Deadline: req.Deadline,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, SubtaskResponse{Success: true, Subtask: saved})
}

func (h *Handler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	subtaskID, err := pathID(r, "subtaskId", "subtask")
	if err != nil {
		fail(w, r, err)
		return
	}

	var update Updater = &CustomerSubtaskUpdate{}
	if id.IsAdmin() {
		update = &AdminSubtaskUpdate{}
	}
	cols, err := decodeUpdate(r, update)
	if err != nil {
		fail(w, r, err)
		return
	}

	sub, err := repo.GetSubtask(r.Context(), subtaskID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if _, err := ownTask(r, repo, id, sub.TaskID); err != nil {
		if apperr.IsNotFound(err) {
			err = apperr.NotFound("subtask")
		}
		fail(w, r, err)
		return
	}

	updated, err := repo.UpdateSubtask(r.Context(), subtaskID, cols)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SubtaskResponse{Success: true, Subtask: updated})
}

func (h *Handler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.authorize(w, r, types.RoleAdmin)
	if !ok {
		return
	}
	subtaskID, err := pathID(r, "subtaskId", "subtask")
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := repo.DeleteSubtask(r.Context(), subtaskID); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Subtask deleted successfully"})
}

// Comments

func (h *Handler) GetTaskComments(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	taskID, err := pathID(r, "taskId", "task")
	if err != nil {
		fail(w, r, err)
		return
	}

	if _, err := ownTask(r, repo, id, taskID); err != nil {
		fail(w, r, err)
		return
	}

	comments, err := repo.ListTaskComments(r.Context(), taskID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GetCommentsResponse{Success: true, Comments: comments})
}

func (h *Handler) CreateTaskComment(w http.ResponseWriter, r *http.Request) {
	repo, id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	taskID, err := pathID(r, "taskId", "task")
	if err != nil {
		fail(w, r, err)
		return
	}

	var req CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	if _, err := ownTask(r, repo, id, taskID); err != nil {
		fail(w, r, err)
		return
	}

	saved, err := repo.InsertTaskComment(r.Context(), types.TaskComment{
		TaskID:   taskID,
		AuthorID: id.UserID,
		Content:  req.Content,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CommentResponse{Success: true, Comment: saved})
}
