package supabase

import (
	"context"
	"fmt"

	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/supabase-community/postgrest-go"
)

func (s *Store) ListSessions(ctx context.Context, companyID string) ([]types.Session, error) {
	query := s.client.From(config.TableSessions).
		Select("*", "", false)

	if companyID != "" {
		query = query.Eq("company_id", companyID)
	}

	resp, _, err := query.
		Order("position", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}
	return decodeAll[types.Session](resp, config.TableSessions)
}

func (s *Store) GetSession(ctx context.Context, id string) (types.Session, error) {
	return getOne[types.Session](s.client, config.TableSessions, "*", id, "session")
}

func (s *Store) InsertSession(ctx context.Context, x types.Session) (types.Session, error) {
	return insertOne(s.client, config.TableSessions, "session", x)
}

func (s *Store) UpdateSession(ctx context.Context, id string, cols repository.Columns) (types.Session, error) {
	return updateOne[types.Session](s.client, config.TableSessions, "session", id, cols)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableSessions, "session", id)
}
