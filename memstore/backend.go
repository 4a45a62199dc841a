package memstore

import (
	"net/http"

	"clementus360/coaching-portal/auth"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"
)

// Backend serves a single Store to every caller. Tokens are verified the same
// way as against Supabase; row-level policies are not emulated, the handlers'
// own company checks apply.
type Backend struct {
	Store  *Store
	Secret string
}

func NewBackend(store *Store, secret string) *Backend {
	return &Backend{Store: store, Secret: secret}
}

func (b *Backend) Authenticate(r *http.Request) (repository.Repository, types.Identity, error) {
	token, err := auth.BearerToken(r)
	if err != nil {
		return nil, types.Identity{}, err
	}
	sub, err := auth.VerifyToken(token, b.Secret)
	if err != nil {
		return nil, types.Identity{}, err
	}
	id, err := auth.Resolve(r.Context(), b.Store, sub)
	if err != nil {
		return nil, types.Identity{}, err
	}
	return b.Store, id, nil
}

func (b *Backend) Service() repository.Repository {
	return b.Store
}
