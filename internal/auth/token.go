// Package auth handles the client side of authentication: exchanging
// credentials for a grant and inspecting the access token. Signature
// verification is the backend's job; the client only reads claims to know
// who it is acting as and when the session lapses.
package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/internal/remote"
)

// Claims describes the backend's JWT payload.
type Claims struct {
	SubjectID string `json:"sub"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Grant is a live authentication: the token plus the actor it belongs to.
type Grant struct {
	Token     string
	Actor     domain.Actor
	ExpiresAt time.Time
}

// Expired reports whether the grant has lapsed. A grant without an expiry
// claim never expires locally.
func (g *Grant) Expired(now time.Time) bool {
	if g.ExpiresAt.IsZero() {
		return false
	}
	return now.After(g.ExpiresAt)
}

// InspectToken reads claims without verifying the signature.
func InspectToken(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// GrantFromToken rebuilds a grant from a stored token, e.g. when the CLI
// reuses a token from a previous login.
func GrantFromToken(token string) (*Grant, error) {
	claims, err := InspectToken(token)
	if err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return nil, errors.New("token carries no known role")
	}
	grant := &Grant{
		Token: token,
		Actor: domain.Actor{
			ID:     claims.SubjectID,
			Name:   claims.Name,
			Role:   role,
			Active: true,
		},
	}
	if claims.ExpiresAt != nil {
		grant.ExpiresAt = claims.ExpiresAt.Time
	}
	return grant, nil
}

// Login exchanges credentials for a grant via the remote service.
func Login(ctx context.Context, svc remote.Service, name, password string) (*Grant, error) {
	result, err := svc.Login(ctx, name, password)
	if err != nil {
		return nil, err
	}
	grant := &Grant{
		Token: result.AccessToken,
		Actor: domain.Actor{
			ID:     result.ActorID,
			Name:   result.Name,
			Role:   result.Role,
			Active: true,
		},
	}
	if claims, err := InspectToken(result.AccessToken); err == nil && claims.ExpiresAt != nil {
		grant.ExpiresAt = claims.ExpiresAt.Time
	}
	return grant, nil
}
