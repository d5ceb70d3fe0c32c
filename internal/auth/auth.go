// Package auth resolves the requesting account from an incoming HTTP
// request and carries it through the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/soundscene/accounts/internal/guards"
	"github.com/soundscene/accounts/internal/models"
	"github.com/soundscene/accounts/internal/token"
)

type ctxKey string

const userCtxKey = ctxKey("user")

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// WithUser stores the authenticated account in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext extracts the authenticated account, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*models.User)
	return u, ok && u != nil
}

// PrincipalFromContext returns the request's principal for guard
// evaluation, falling back to the anonymous principal.
func PrincipalFromContext(ctx context.Context) guards.Principal {
	if u, ok := UserFromContext(ctx); ok {
		return u
	}
	return guards.Anonymous{}
}

// Middleware resolves the account behind a bearer header or access
// cookie and attaches it to the context. Resolution is best-effort:
// an absent or bad token simply leaves the request anonymous, and the
// guards decide whether that is acceptable.
func Middleware(tokens *token.Manager, db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := extractToken(r); ok {
				if id, err := tokens.Parse(raw, token.KindAccess); err == nil {
					var user models.User
					err := db.WithContext(r.Context()).Preload("Profile").
						First(&user, "id = ?", id).Error
					if err == nil {
						r = r.WithContext(WithUser(r.Context(), &user))
					} else if !errors.Is(err, gorm.ErrRecordNotFound) {
						http.Error(w, "internal error", http.StatusInternalServerError)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok && raw != "" {
			return raw, true
		}
		return "", false
	}
	if c, err := r.Cookie(AccessCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// SendCookies sets the token pair as HttpOnly cookies so browser
// clients keep working without handling the tokens themselves.
func SendCookies(w http.ResponseWriter, pair token.Pair, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    pair.Access,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(accessTTL),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.Refresh,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(refreshTTL),
	})
}

// ClearCookies expires both token cookies.
func ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Unix(0, 0),
		})
	}
}
