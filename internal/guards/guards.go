// Package guards implements the composable authorization pipeline.
// A guard wraps a handler and either calls through or short-circuits
// with a structured error before the handler runs. Guards only gate
// entry: they never retry and never recover errors raised by the
// wrapped handler.
package guards

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/soundscene/accounts/internal/apperr"
	"github.com/soundscene/accounts/internal/messages"
	"github.com/soundscene/accounts/internal/models"
)

// Principal is the requesting identity for one guarded call. The
// authenticated state is a capability flag, not a type check.
type Principal interface {
	IsAuthenticated() bool
	UserID() uuid.UUID
	UserRole() models.Role
	HasPermission(perm models.Permission) bool
}

// Anonymous is the sentinel principal for requests without credentials.
type Anonymous struct{}

func (Anonymous) IsAuthenticated() bool                  { return false }
func (Anonymous) UserID() uuid.UUID                      { return uuid.Nil }
func (Anonymous) UserRole() models.Role                  { return models.RoleAnonymous }
func (Anonymous) HasPermission(_ models.Permission) bool { return false }

// Args carries the call arguments a guard may need, keyed by field name.
type Args map[string]any

// Handler is the guarded unit of work.
type Handler func(ctx context.Context, p Principal, args Args) (any, error)

// Guard wraps a Handler with one authorization check.
type Guard func(Handler) Handler

// Chain composes guards so that the first listed guard runs first.
func Chain(gs ...Guard) Guard {
	return func(h Handler) Handler {
		for i := len(gs) - 1; i >= 0; i-- {
			h = gs[i](h)
		}
		return h
	}
}

// LoginRequired fails with UNAUTHENTICATED when the principal is not
// authenticated.
func LoginRequired() Guard {
	return func(next Handler) Handler {
		return func(ctx context.Context, p Principal, args Args) (any, error) {
			if !p.IsAuthenticated() {
				return nil, apperr.Unauthenticated(messages.AuthRequiredAction)
			}
			return next(ctx, p, args)
		}
	}
}

// RoleRequired fails with FORBIDDEN when the principal's role is not
// among the allowed roles. It does not check authentication itself;
// compose it behind LoginRequired (the role shortcuts below do).
func RoleRequired(allowed ...models.Role) Guard {
	values := make([]string, len(allowed))
	for i, r := range allowed {
		values[i] = string(r)
	}
	sort.Strings(values)
	joined := strings.Join(values, ", ")

	return func(next Handler) Handler {
		return func(ctx context.Context, p Principal, args Args) (any, error) {
			role := p.UserRole()
			for _, r := range allowed {
				if role == r {
					return next(ctx, p, args)
				}
			}
			e := apperr.Forbidden(fmt.Sprintf(
				"Access denied. Your role '%s' is not authorized for this action. Allowed roles: %s.",
				role, joined))
			e.WithExtension("user_role", string(role))
			e.WithExtension("allowed_roles", values)
			return nil, e
		}
	}
}

// PermissionRequired fails with FORBIDDEN when the principal lacks the
// named fine-grained permission. An empty message selects the default.
func PermissionRequired(perm models.Permission, message string) Guard {
	if message == "" {
		message = fmt.Sprintf("Access Denied: Missing required permission '%s'.", perm)
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, p Principal, args Args) (any, error) {
			if !p.HasPermission(perm) {
				e := apperr.Forbidden(message)
				e.WithExtension("required_permission", string(perm))
				return nil, e
			}
			return next(ctx, p, args)
		}
	}
}

// OwnerID extracts the expected owner identifier from the call
// arguments.
type OwnerID func(args Args) (uuid.UUID, error)

// OwnerRequired restricts access to the resource's owner. The checks
// run in order: authentication, admin bypass, strict ID equality.
// Ownership is decided by identifier equality alone.
func OwnerRequired(ownerID OwnerID) Guard {
	return func(next Handler) Handler {
		return func(ctx context.Context, p Principal, args Args) (any, error) {
			if !p.IsAuthenticated() {
				return nil, apperr.Unauthenticated(messages.AuthRequiredResource)
			}
			if p.UserRole() == models.RoleAdmin {
				return next(ctx, p, args)
			}
			expected, err := ownerID(args)
			if err != nil {
				return nil, err
			}
			if p.UserID() != expected {
				e := apperr.Forbidden(messages.NotResourceOwner)
				e.WithExtension("reason", "NOT_RESOURCE_OWNER")
				return nil, e
			}
			return next(ctx, p, args)
		}
	}
}

// Role shortcuts. Each applies LoginRequired first, then RoleRequired;
// admin is additionally admitted by the moderator/reviewer/creator
// shortcuts.

func AdminRequired() Guard {
	return Chain(LoginRequired(), RoleRequired(models.RoleAdmin))
}

func ModeratorRequired() Guard {
	return Chain(LoginRequired(), RoleRequired(models.RoleAdmin, models.RoleModerator))
}

func ReviewerRequired() Guard {
	return Chain(LoginRequired(), RoleRequired(models.RoleAdmin, models.RoleReviewer))
}

func CreatorRequired() Guard {
	return Chain(LoginRequired(), RoleRequired(models.RoleAdmin, models.RoleCreator))
}

func UserRequired() Guard {
	return Chain(LoginRequired(), RoleRequired(models.RoleUser))
}
