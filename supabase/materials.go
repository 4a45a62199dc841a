package supabase

import (
	"context"
	"fmt"
	"io"
	"time"

	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/supabase-community/postgrest-go"
	storage_go "github.com/supabase-community/storage-go"
)

func (s *Store) ListMaterials(ctx context.Context, companyID string) ([]types.Material, error) {
	query := s.client.From(config.TableMaterials).
		Select("*", "", false)

	if companyID != "" {
		query = query.Eq("company_id", companyID)
	}

	resp, _, err := query.
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch materials: %w", err)
	}
	return decodeAll[types.Material](resp, config.TableMaterials)
}

func (s *Store) GetMaterial(ctx context.Context, id string) (types.Material, error) {
	return getOne[types.Material](s.client, config.TableMaterials, "*", id, "material")
}

func (s *Store) InsertMaterial(ctx context.Context, m types.Material) (types.Material, error) {
	return insertOne(s.client, config.TableMaterials, "material", m)
}

func (s *Store) UpdateMaterial(ctx context.Context, id string, cols repository.Columns) (types.Material, error) {
	return updateOne[types.Material](s.client, config.TableMaterials, "material", id, cols)
}

func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableMaterials, "material", id)
}

// Storage

func (s *Store) UploadBlob(ctx context.Context, path, contentType string, body io.Reader) error {
	upsert := false
	_, err := s.client.Storage.UploadFile(s.bucket, path, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

func (s *Store) RemoveBlob(ctx context.Context, path string) error {
	if _, err := s.client.Storage.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (s *Store) SignedBlobURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	resp, err := s.client.Storage.CreateSignedUrl(s.bucket, path, int(expiresIn.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", path, err)
	}
	return resp.SignedURL, nil
}
