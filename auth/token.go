// Package auth verifies Supabase access tokens and resolves the caller's
// role from the profiles table.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/golang-jwt/jwt"
)

const audience = "authenticated"

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperr.Unauthorized("missing Authorization header")
	}

	jwtString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if jwtString == "" || jwtString == authHeader {
		return "", apperr.Unauthorized("invalid Authorization header")
	}
	return jwtString, nil
}

// VerifyToken checks the HS256 signature, expiry and audience of a Supabase
// access token and returns its subject.
func VerifyToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", apperr.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.Unauthorized("invalid JWT claims")
	}
	if !claims.VerifyAudience(audience, false) {
		return "", apperr.Unauthorized("invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperr.Unauthorized("missing sub in token")
	}
	return sub, nil
}

// SignToken issues a token shaped like the ones Supabase Auth hands out.
func SignToken(subject, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"aud":  audience,
		"role": "authenticated",
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Resolve loads the caller's profile and turns it into an Identity.
func Resolve(ctx context.Context, profiles repository.Profiles, subject string) (types.Identity, error) {
	profile, err := profiles.GetProfile(ctx, subject)
	if err != nil {
		if apperr.IsNotFound(err) {
			return types.Identity{}, apperr.Forbidden("no profile for user")
		}
		return types.Identity{}, err
	}

	id := types.Identity{UserID: subject, Role: profile.Role}
	switch profile.Role {
	case types.RoleAdmin:
	case types.RoleCustomer:
		if profile.CompanyID == nil || *profile.CompanyID == "" {
			return types.Identity{}, apperr.Forbidden("customer profile has no company")
		}
		id.CompanyID = *profile.CompanyID
	default:
		return types.Identity{}, apperr.Forbidden("unknown role")
	}
	return id, nil
}
