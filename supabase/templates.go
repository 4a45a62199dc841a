package supabase

import (
	"context"
	"fmt"
	"time"

	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/supabase-community/postgrest-go"
)

// Task templates

func (s *Store) ListTaskTemplates(ctx context.Context) ([]types.TaskTemplate, error) {
	resp, _, err := s.client.From(config.TableTaskTemplates).
		Select("*", "", false).
		Order("last_used_at", &postgrest.OrderOpts{Ascending: false, NullsFirst: false}).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task templates: %w", err)
	}
	return decodeAll[types.TaskTemplate](resp, config.TableTaskTemplates)
}

func (s *Store) GetTaskTemplate(ctx context.Context, id string) (types.TaskTemplate, error) {
	return getOne[types.TaskTemplate](s.client, config.TableTaskTemplates, "*", id, "template")
}

func (s *Store) InsertTaskTemplate(ctx context.Context, t types.TaskTemplate) (types.TaskTemplate, error) {
	return insertOne(s.client, config.TableTaskTemplates, "template", t)
}

func (s *Store) UpdateTaskTemplate(ctx context.Context, id string, cols repository.Columns) (types.TaskTemplate, error) {
	return updateOne[types.TaskTemplate](s.client, config.TableTaskTemplates, "template", id, cols)
}

func (s *Store) DeleteTaskTemplate(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableTaskTemplates, "template", id)
}

func (s *Store) TouchTaskTemplate(ctx context.Context, id string, at time.Time) error {
	_, _, err := s.client.From(config.TableTaskTemplates).
		Update(map[string]interface{}{"last_used_at": at}, "minimal", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update template last_used_at: %w", err)
	}
	return nil
}

// Product templates

func (s *Store) ListProductTemplates(ctx context.Context) ([]types.ProductTemplate, error) {
	resp, _, err := s.client.From(config.TableProductTemplates).
		Select("*", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product templates: %w", err)
	}
	return decodeAll[types.ProductTemplate](resp, config.TableProductTemplates)
}

func (s *Store) GetProductTemplate(ctx context.Context, id string) (types.ProductTemplate, error) {
	return getOne[types.ProductTemplate](s.client, config.TableProductTemplates, "*", id, "product template")
}

func (s *Store) InsertProductTemplate(ctx context.Context, t types.ProductTemplate) (types.ProductTemplate, error) {
	return insertOne(s.client, config.TableProductTemplates, "product template", t)
}

func (s *Store) UpdateProductTemplate(ctx context.Context, id string, cols repository.Columns) (types.ProductTemplate, error) {
	return updateOne[types.ProductTemplate](s.client, config.TableProductTemplates, "product template", id, cols)
}

func (s *Store) DeleteProductTemplate(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableProductTemplates, "product template", id)
}

// Lead products

const leadProductWithTemplate = "*, product_templates(*)"

func (s *Store) ListLeadProducts(ctx context.Context, leadID string) ([]types.LeadProduct, error) {
	resp, _, err := s.client.From(config.TableLeadProducts).
		Select(leadProductWithTemplate, "", false).
		Eq("lead_id", leadID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lead products: %w", err)
	}
	return decodeAll[types.LeadProduct](resp, config.TableLeadProducts)
}

func (s *Store) GetLeadProduct(ctx context.Context, id string) (types.LeadProduct, error) {
	return getOne[types.LeadProduct](s.client, config.TableLeadProducts, leadProductWithTemplate, id, "lead product")
}

func (s *Store) InsertLeadProduct(ctx context.Context, lp types.LeadProduct) (types.LeadProduct, error) {
	lp.ProductTemplate = nil
	return insertOne(s.client, config.TableLeadProducts, "lead product", lp)
}

func (s *Store) DeleteLeadProduct(ctx context.Context, id string) error {
	return deleteOne(s.client, config.TableLeadProducts, "lead product", id)
}

// ClaimLeadProduct is a conditional update: it only matches while the row is
// still announced, so concurrent activations cannot both succeed.
func (s *Store) ClaimLeadProduct(ctx context.Context, id string, at time.Time) (types.LeadProduct, bool, error) {
	resp, _, err := s.client.From(config.TableLeadProducts).
		Update(map[string]interface{}{
			"status":       types.LeadProductActivated,
			"activated_at": at,
		}, returnRows, "").
		Eq("id", id).
		Eq("status", types.LeadProductAnnounced).
		Execute()
	if err != nil {
		return types.LeadProduct{}, false, fmt.Errorf("failed to claim lead product: %w", err)
	}

	rows, err := decodeAll[types.LeadProduct](resp, config.TableLeadProducts)
	if err != nil {
		return types.LeadProduct{}, false, err
	}
	if len(rows) == 0 {
		return types.LeadProduct{}, false, nil
	}
	return rows[0], true, nil
}

func (s *Store) ReleaseLeadProduct(ctx context.Context, id string) error {
	_, _, err := s.client.From(config.TableLeadProducts).
		Update(map[string]interface{}{
			"status":       types.LeadProductAnnounced,
			"activated_at": nil,
		}, "minimal", "").
		Eq("id", id).
		Eq("status", types.LeadProductActivated).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to release lead product: %w", err)
	}
	return nil
}
