package domain

import (
	"context"
	"errors"
)

// Actor is the authenticated operator performing a request.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// SystemActor is used when no operator is attached to the context.
var SystemActor = Actor{ID: "system", Name: "system", Role: RoleAdmin}

// Role represents an operator's access level
type Role string

const (
	// RoleAdmin can manage items, reference data and reset balances
	RoleAdmin Role = "admin"

	// RoleOperator can record movements and maintain items
	RoleOperator Role = "operator"

	// RoleViewer can only view resources, no mutations
	RoleViewer Role = "viewer"
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// CanWrite checks if the role can record movements and edit items
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanAdminister checks if the role can reset balances and delete items
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type actorKey struct{}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the operator attached to ctx, or SystemActor.
func ActorFromContext(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok && a.Name != "" {
		return a
	}
	return SystemActor
}
