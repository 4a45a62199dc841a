package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

var _ repository.Repository = (*Store)(nil)

// Store implements repository.Repository over PostgREST and Supabase Storage.
type Store struct {
	client *supabase.Client
	bucket string
}

func NewStore(client *supabase.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

const returnRows = "representation"

func decodeAll[T any](resp []byte, table string) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s data: %w", table, err)
	}
	return rows, nil
}

// decodeOne returns the first row of resp, or NotFound(what) when empty.
func decodeOne[T any](resp []byte, table, what string) (T, error) {
	var zero T
	rows, err := decodeAll[T](resp, table)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, apperr.NotFound(what)
	}
	return rows[0], nil
}

func getOne[T any](client *supabase.Client, table, columns, id, what string) (T, error) {
	resp, _, err := client.From(table).
		Select(columns, "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to fetch %s: %w", what, err)
	}
	return decodeOne[T](resp, table, what)
}

func insertOne[T any](client *supabase.Client, table, what string, row T) (T, error) {
	resp, _, err := client.From(table).
		Insert(row, false, "", returnRows, "").
		Execute()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to insert %s: %w", what, err)
	}
	return decodeOne[T](resp, table, what)
}

func updateOne[T any](client *supabase.Client, table, what, id string, cols repository.Columns) (T, error) {
	resp, _, err := client.From(table).
		Update(cols, returnRows, "").
		Eq("id", id).
		Execute()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to update %s: %w", what, err)
	}
	return decodeOne[T](resp, table, what)
}

func deleteOne(client *supabase.Client, table, what, id string) error {
	resp, _, err := client.From(table).
		Delete(returnRows, "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}
	var deleted []json.RawMessage
	if err := json.Unmarshal(resp, &deleted); err != nil {
		return fmt.Errorf("failed to parse delete result: %w", err)
	}
	if len(deleted) == 0 {
		return apperr.NotFound(what)
	}
	return nil
}

// Leads

func (s *Store) ListLeads(ctx context.Context) ([]types.Lead, error) {
	resp, _, err := s.client.From(config.TableLeads).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return decodeAll[types.Lead](resp, config.TableLeads)
}

func (s *Store) GetLead(ctx context.Context, id string) (types.Lead, error) {
	return getOne[types.Lead](s.client, config.TableLeads, "*", id, "lead")
}

func (s *Store) InsertLead(ctx context.Context, lead types.Lead) (types.Lead, error) {
	return insertOne(s.client, config.TableLeads, "lead", lead)
}

func (s *Store) UpdateLead(ctx context.Context, id string, cols repository.Columns) (types.Lead, error) {
	return updateOne[types.Lead](s.client, config.TableLeads, "lead", id, cols)
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableLeads, "lead", id)
}

// Profiles

func (s *Store) GetProfile(ctx context.Context, userID string) (types.Profile, error) {
	return getOne[types.Profile](s.client, config.TableProfiles, "id, role, company_id, full_name", userID, "profile")
}

// Tags

func (s *Store) ListTags(ctx context.Context) ([]types.TaskTag, error) {
	resp, _, err := s.client.From(config.TableTaskTags).
		Select("*", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	return decodeAll[types.TaskTag](resp, config.TableTaskTags)
}

func (s *Store) InsertTag(ctx context.Context, tag types.TaskTag) (types.TaskTag, error) {
	return insertOne(s.client, config.TableTaskTags, "tag", tag)
}

func (s *Store) UpdateTag(ctx context.Context, id string, cols repository.Columns) (types.TaskTag, error) {
	return updateOne[types.TaskTag](s.client, config.TableTaskTags, "tag", id, cols)
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableTaskTags, "tag", id)
}
