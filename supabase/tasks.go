package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/supabase-community/postgrest-go"
)

const taskWithChildren = "*, subtasks(*, subtask_attachments(*)), task_attachments(*)"

func sortSubtasks(tasks []types.Task) {
	for i := range tasks {
		subs := tasks[i].Subtasks
		sort.SliceStable(subs, func(a, b int) bool { return subs[a].Position < subs[b].Position })
	}
}

func (s *Store) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]types.Task, error) {
	query := s.client.From(config.TableTasks).
		Select(taskWithChildren, "", false)

	if filter.CompanyID != "" {
		query = query.Eq("company_id", filter.CompanyID)
	}
	if filter.Status != "" {
		query = query.Eq("status", filter.Status)
	}

	resp, _, err := query.
		Order("status", &postgrest.OrderOpts{Ascending: true}).
		Order("position", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	tasks, err := decodeAll[types.Task](resp, config.TableTasks)
	if err != nil {
		return nil, err
	}
	sortSubtasks(tasks)
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (types.Task, error) {
	task, err := getOne[types.Task](s.client, config.TableTasks, taskWithChildren, id, "task")
	if err != nil {
		return task, err
	}
	one := []types.Task{task}
	sortSubtasks(one)
	return one[0], nil
}

func (s *Store) InsertTask(ctx context.Context, task types.Task) (types.Task, error) {
	task.Subtasks, task.Attachments = nil, nil
	return insertOne(s.client, config.TableTasks, "task", task)
}

func (s *Store) UpdateTask(ctx context.Context, id string, cols repository.Columns) (types.Task, error) {
	return updateOne[types.Task](s.client, config.TableTasks, "task", id, cols)
}

// DeleteTask relies on ON DELETE CASCADE for subtasks, attachments and
// comments.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableTasks, "task", id)
}

func (s *Store) InsertTaskAttachment(ctx context.Context, a types.TaskAttachment) (types.TaskAttachment, error) {
	return insertOne(s.client, config.TableTaskAttachments, "task attachment", a)
}

// Subtasks

func (s *Store) GetSubtask(ctx context.Context, id string) (types.Subtask, error) {
	return getOne[types.Subtask](s.client, config.TableSubtasks, "*", id, "subtask")
}

func (s *Store) InsertSubtask(ctx context.Context, sub types.Subtask) (types.Subtask, error) {
	sub.Attachments = nil
	return insertOne(s.client, config.TableSubtasks, "subtask", sub)
}

func (s *Store) UpdateSubtask(ctx context.Context, id string, cols repository.Columns) (types.Subtask, error) {
	return updateOne[types.Subtask](s.client, config.TableSubtasks, "subtask", id, cols)
}

func (s *Store) DeleteSubtask(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableSubtasks, "subtask", id)
}

func (s *Store) InsertSubtaskAttachment(ctx context.Context, a types.SubtaskAttachment) (types.SubtaskAttachment, error) {
	return insertOne(s.client, config.TableSubtaskAttachments, "subtask attachment", a)
}

// Comments

func (s *Store) ListTaskComments(ctx context.Context, taskID string) ([]types.TaskComment, error) {
	resp, _, err := s.client.From(config.TableTaskComments).
		Select("*", "", false).
		Eq("task_id", taskID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}

	var comments []types.TaskComment
	if err := json.Unmarshal(resp, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comment data: %w", err)
	}
	return comments, nil
}

func (s *Store) InsertTaskComment(ctx context.Context, c types.TaskComment) (types.TaskComment, error) {
	return insertOne(s.client, config.TableTaskComments, "comment", c)
}
