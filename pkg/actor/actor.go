// Package actor carries the authenticated caller through a request.
//
// The auth middleware attaches an Actor after verifying the bearer
// credential; services read it back to make role and ownership decisions
// and to stamp audit columns such as bhw_verified_by.
package actor

import (
	"context"
	"fmt"
	"sync"
)

// Actor is the caller performing an action.
type Actor struct {
	// ID is the user id from the credential subject.
	ID string `json:"id"`

	// Role is the user_type claim: beneficiary, bhw, mswdo or admin.
	Role string `json:"role"`

	// Email is filled in when the user record was loaded.
	Email string `json:"email,omitempty"`
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "anonymous"
	}
	return fmt.Sprintf("%s (%s)", a.ID, a.Role)
}

type contextKey string

const (
	actorContextKey  contextKey = "actor"
	holderContextKey contextKey = "actor_holder"
)

// FromContext retrieves the Actor from the context.
// Returns nil if the request is unauthenticated.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached. If an outer
// middleware installed a Holder, it is updated too.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if h, ok := ctx.Value(holderContextKey).(*Holder); ok {
		h.set(a)
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// Holder lets middleware that wraps authentication see who the caller was
// once the request completes.
type Holder struct {
	mu sync.RWMutex
	a  *Actor
}

// WithHolder installs an empty Holder in ctx.
func WithHolder(ctx context.Context) (context.Context, *Holder) {
	h := &Holder{}
	return context.WithValue(ctx, holderContextKey, h), h
}

func (h *Holder) set(a *Actor) {
	h.mu.Lock()
	h.a = a
	h.mu.Unlock()
}

// ID returns the held actor id, or "" when the request was anonymous.
func (h *Holder) ID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.a == nil {
		return ""
	}
	return h.a.ID
}
