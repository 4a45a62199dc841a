package supabase

import (
	"fmt"
	"net/http"

	"clementus360/coaching-portal/auth"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/supabase-community/supabase-go"
)

// Gateway hands out Supabase-backed repositories. Authenticated callers get a
// client carrying their own JWT so the database's row-level policies apply;
// public flows (lead capture, webhooks) use the service client.
type Gateway struct {
	apiURL    string
	apiKey    string
	jwtSecret string
	bucket    string
	service   *Store
}

func NewGateway(s config.Settings) (*Gateway, error) {
	if s.SupabaseURL == "" || s.SupabaseKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
	}

	serviceKey := s.SupabaseServiceKey
	if serviceKey == "" {
		config.Logger.Warn("SUPABASE_SERVICE_KEY not set, public endpoints will use the anon key")
		serviceKey = s.SupabaseKey
	}

	client, err := supabase.NewClient(s.SupabaseURL, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	return &Gateway{
		apiURL:    s.SupabaseURL,
		apiKey:    s.SupabaseKey,
		jwtSecret: s.JWTSecret,
		bucket:    s.MaterialsBucket,
		service:   NewStore(client, s.MaterialsBucket),
	}, nil
}

// Authenticate verifies the bearer token, builds a client scoped to it and
// resolves the caller's role from their profile.
func (g *Gateway) Authenticate(r *http.Request) (repository.Repository, types.Identity, error) {
	jwtString, err := auth.BearerToken(r)
	if err != nil {
		return nil, types.Identity{}, err
	}

	sub, err := auth.VerifyToken(jwtString, g.jwtSecret)
	if err != nil {
		return nil, types.Identity{}, err
	}

	client, err := supabase.NewClient(g.apiURL, g.apiKey, &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + jwtString,
		},
	})
	if err != nil {
		return nil, types.Identity{}, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	store := NewStore(client, g.bucket)
	identity, err := auth.Resolve(r.Context(), store, sub)
	if err != nil {
		return nil, types.Identity{}, err
	}
	return store, identity, nil
}

func (g *Gateway) Service() repository.Repository {
	return g.service
}
