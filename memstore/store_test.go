package memstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAssignsIDAndCreatedAt(t *testing.T) {
	s := New()
	task, err := s.InsertTask(context.Background(), types.Task{CompanyID: "c1", Title: "Kickoff", Status: types.TaskStatusTodo})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	require.NotNil(t, task.CreatedAt)

	got, err := s.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kickoff", got.Title)
}

func TestUpdateAppliesColumns(t *testing.T) {
	s := New()
	ctx := context.Background()
	task, err := s.InsertTask(ctx, types.Task{CompanyID: "c1", Title: "A", Status: types.TaskStatusTodo})
	require.NoError(t, err)

	updated, err := s.UpdateTask(ctx, task.ID, repository.Columns{"status": types.TaskStatusDone, "id": "hijack"})
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusDone, updated.Status)
	assert.Equal(t, task.ID, updated.ID)
	assert.Equal(t, "A", updated.Title)

	_, err = s.UpdateTask(ctx, "missing", repository.Columns{"status": "done"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteTaskCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	task, _ := s.InsertTask(ctx, types.Task{CompanyID: "c1", Title: "A"})
	sub, _ := s.InsertSubtask(ctx, types.Subtask{TaskID: task.ID, Title: "a"})
	_, _ = s.InsertSubtaskAttachment(ctx, types.SubtaskAttachment{SubtaskID: sub.ID, Label: "l", URL: "u", Type: "link"})
	_, _ = s.InsertTaskAttachment(ctx, types.TaskAttachment{TaskID: task.ID, Label: "l", URL: "u", Type: "link"})
	_, _ = s.InsertTaskComment(ctx, types.TaskComment{TaskID: task.ID, Content: "hi"})

	require.NoError(t, s.DeleteTask(ctx, task.ID))

	for _, table := range []string{"tasks", "subtasks", "subtask_attachments", "task_attachments", "task_comments"} {
		assert.Zero(t, s.Count(table), table)
	}
}

func TestListTasksEmbedsChildrenInOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	second, _ := s.InsertTask(ctx, types.Task{CompanyID: "c1", Title: "second", Status: "todo", Position: 1})
	first, _ := s.InsertTask(ctx, types.Task{CompanyID: "c1", Title: "first", Status: "todo", Position: 0})
	_, _ = s.InsertTask(ctx, types.Task{CompanyID: "c2", Title: "other", Status: "todo"})
	_, _ = s.InsertSubtask(ctx, types.Subtask{TaskID: first.ID, Title: "b", Position: 1})
	_, _ = s.InsertSubtask(ctx, types.Subtask{TaskID: first.ID, Title: "a", Position: 0})

	tasks, err := s.ListTasks(ctx, repository.TaskFilter{CompanyID: "c1"})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)
	require.Len(t, tasks[0].Subtasks, 2)
	assert.Equal(t, "a", tasks[0].Subtasks[0].Title)
}

func TestFailOn(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")
	s.FailOn("insert tasks", 1, boom)

	_, err := s.InsertTask(ctx, types.Task{Title: "ok"})
	require.NoError(t, err)
	_, err = s.InsertTask(ctx, types.Task{Title: "fails"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, s.Calls("insert tasks"))
	assert.Equal(t, 1, s.Count("tasks"))
}

func TestClaimLeadProductOnlyOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	lp, err := s.InsertLeadProduct(ctx, types.LeadProduct{LeadID: "l1", ProductTemplateID: "p1", Status: types.LeadProductAnnounced})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.ClaimLeadProduct(ctx, lp.ID, time.Now())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	require.NoError(t, s.ReleaseLeadProduct(ctx, lp.ID))
	got, err := s.GetLeadProduct(ctx, lp.ID)
	require.NoError(t, err)
	assert.Equal(t, types.LeadProductAnnounced, got.Status)
	assert.Nil(t, got.ActivatedAt)
}

func TestBlobs(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.UploadBlob(ctx, "c1/a.pdf", "application/pdf", strings.NewReader("%PDF")))
	assert.Error(t, s.UploadBlob(ctx, "c1/a.pdf", "application/pdf", strings.NewReader("%PDF")))

	u, err := s.SignedBlobURL(ctx, "c1/a.pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "memory://blobs/")

	require.NoError(t, s.RemoveBlob(ctx, "c1/a.pdf"))
	_, ok := s.Blob("c1/a.pdf")
	assert.False(t, ok)
}
