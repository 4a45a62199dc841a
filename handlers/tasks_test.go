package handlers

import (
	"context"
	"net/http"
	"testing"

	"clementus360/coaching-portal/scorecard"
	"clementus360/coaching-portal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) task(companyID, title, status string, position int) types.Task {
	e.t.Helper()
	task, err := e.store.InsertTask(context.Background(), types.Task{
		CompanyID: companyID,
		Title:     title,
		Status:    status,
		Position:  position,
	})
	require.NoError(e.t, err)
	return task
}

func TestCustomerTaskUpdate(t *testing.T) {
	e := newTestEnv(t)
	own := e.task(e.company.ID, "Own", types.TaskStatusTodo, 0)
	foreign := e.task(e.other.ID, "Foreign", types.TaskStatusTodo, 0)

	t.Run("status change", func(t *testing.T) {
		rec := e.do(http.MethodPatch, "/tasks/"+own.ID, e.customer, map[string]any{"status": "done"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, types.TaskStatusDone, decode[types.TaskResponse](t, rec).Task.Status)
	})

	t.Run("admin-only field", func(t *testing.T) {
		rec := e.do(http.MethodPatch, "/tasks/"+own.ID, e.customer, map[string]any{"title": "Renamed"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorOf(t, rec), "title")

		stored, err := e.store.GetTask(context.Background(), own.ID)
		require.NoError(t, err)
		assert.Equal(t, "Own", stored.Title)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := e.do(http.MethodPatch, "/tasks/"+own.ID, e.customer, map[string]any{"status": "blocked"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty payload", func(t *testing.T) {
		rec := e.do(http.MethodPatch, "/tasks/"+own.ID, e.customer, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("other company", func(t *testing.T) {
		rec := e.do(http.MethodPatch, "/tasks/"+foreign.ID, e.customer, map[string]any{"status": "done"})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		stored, err := e.store.GetTask(context.Background(), foreign.ID)
		require.NoError(t, err)
		assert.Equal(t, types.TaskStatusTodo, stored.Status)
	})
}

func TestAdminTaskUpdateClearsNullableColumns(t *testing.T) {
	e := newTestEnv(t)
	task := e.task(e.company.ID, "Kickoff", types.TaskStatusTodo, 0)

	rec := e.do(http.MethodPatch, "/tasks/"+task.ID, e.admin, map[string]any{"deadline": "2025-04-01", "title": "Kick-off"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[types.TaskResponse](t, rec).Task
	require.NotNil(t, updated.Deadline)
	assert.Equal(t, "2025-04-01", updated.Deadline.String())
	assert.Equal(t, "Kick-off", updated.Title)

	rec = e.do(http.MethodPatch, "/tasks/"+task.ID, e.admin, `{"deadline": null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode[types.TaskResponse](t, rec).Task.Deadline)
}

func TestCustomerSubtaskUpdate(t *testing.T) {
	e := newTestEnv(t)
	task := e.task(e.company.ID, "Kickoff", types.TaskStatusTodo, 0)

	rec := e.do(http.MethodPost, "/tasks/"+task.ID+"/subtasks", e.admin, map[string]any{"title": "Send agenda"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[SubtaskResponse](t, rec).Subtask
	assert.Equal(t, 0, sub.Position)

	rec = e.do(http.MethodPatch, "/subtasks/"+sub.ID, e.customer, map[string]any{"isDone": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[SubtaskResponse](t, rec).Subtask.IsDone)

	rec = e.do(http.MethodPatch, "/subtasks/"+sub.ID, e.customer, map[string]any{"title": "Other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTasksScopesCustomers(t *testing.T) {
	e := newTestEnv(t)
	e.task(e.company.ID, "Own", types.TaskStatusTodo, 0)
	e.task(e.other.ID, "Foreign", types.TaskStatusTodo, 0)

	rec := e.do(http.MethodGet, "/tasks?company_id="+e.other.ID, e.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[types.GetTasksResponse](t, rec).Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "Own", tasks[0].Title)

	rec = e.do(http.MethodGet, "/tasks?company_id="+e.other.ID, e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks = decode[types.GetTasksResponse](t, rec).Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "Foreign", tasks[0].Title)
}

func TestCreateTaskAppendsToColumn(t *testing.T) {
	e := newTestEnv(t)
	e.task(e.company.ID, "First", types.TaskStatusTodo, 0)
	e.task(e.company.ID, "Second", types.TaskStatusTodo, 1)

	rec := e.do(http.MethodPost, "/tasks", e.admin, map[string]any{"companyId": e.company.ID, "title": "Third"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[types.TaskResponse](t, rec).Task
	assert.Equal(t, types.TaskStatusTodo, task.Status)
	assert.Equal(t, 2, task.Position)
}

func TestReorderTasks(t *testing.T) {
	e := newTestEnv(t)
	a := e.task(e.company.ID, "A", types.TaskStatusTodo, 0)
	b := e.task(e.company.ID, "B", types.TaskStatusTodo, 1)
	c := e.task(e.company.ID, "C", types.TaskStatusInProgress, 0)

	rec := e.do(http.MethodPut, "/tasks/reorder", e.admin, map[string]any{
		"companyId": e.company.ID,
		"status":    types.TaskStatusTodo,
		"taskIds":   []string{c.ID, b.ID, a.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	column := decode[types.GetTasksResponse](t, rec).Tasks
	require.Len(t, column, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{column[0].Title, column[1].Title, column[2].Title})
	for i, task := range column {
		assert.Equal(t, i, task.Position)
		assert.Equal(t, types.TaskStatusTodo, task.Status)
	}
}

func TestReorderTasksRejectsForeignTask(t *testing.T) {
	e := newTestEnv(t)
	a := e.task(e.company.ID, "A", types.TaskStatusTodo, 0)
	foreign := e.task(e.other.ID, "Foreign", types.TaskStatusTodo, 0)

	rec := e.do(http.MethodPut, "/tasks/reorder", e.admin, map[string]any{
		"companyId": e.company.ID,
		"status":    types.TaskStatusTodo,
		"taskIds":   []string{foreign.ID, a.ID},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, e.store.Calls("update tasks"))
}

func TestTaskComments(t *testing.T) {
	e := newTestEnv(t)
	own := e.task(e.company.ID, "Own", types.TaskStatusTodo, 0)
	foreign := e.task(e.other.ID, "Foreign", types.TaskStatusTodo, 0)

	rec := e.do(http.MethodPost, "/tasks/"+own.ID+"/comments", e.customer, map[string]any{"content": "Done on our side"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[CommentResponse](t, rec).Comment
	assert.Equal(t, own.ID, comment.TaskID)
	assert.NotEmpty(t, comment.AuthorID)

	rec = e.do(http.MethodPost, "/tasks/"+foreign.ID+"/comments", e.customer, map[string]any{"content": "Hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, e.store.Count("task_comments"))
}

func TestScorecard(t *testing.T) {
	e := newTestEnv(t)
	e.task(e.company.ID, "Done", types.TaskStatusDone, 0)
	e.task(e.company.ID, "Open", types.TaskStatusTodo, 0)

	rec := e.do(http.MethodGet, "/portal/scorecard", e.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sc := decode[ScorecardResponse](t, rec).Scorecard
	assert.Equal(t, e.company.ID, sc.CompanyID)
	assert.Equal(t, scorecard.Progress{Total: 2, Done: 1, Percent: 50}, sc.Tasks)

	rec = e.do(http.MethodGet, "/portal/scorecard", e.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
