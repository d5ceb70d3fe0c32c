// Package token issues and verifies the signed access and refresh
// tokens used by the HTTP layer.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/soundscene/accounts/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims embeds the registered claim set plus the account identity the
// rest of the request pipeline needs.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Kind   string `json:"kind"`
}

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Manager signs and parses HS256 tokens. Both token kinds are
// stateless; a refresh is simply a longer-lived token that can only be
// exchanged, never used to authenticate a request directly.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret []byte, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Pair is what a successful signup, login or refresh hands back.
type Pair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Issue signs a fresh access/refresh pair for the account.
func (m *Manager) Issue(user *models.User) (Pair, error) {
	access, err := m.sign(user.ID, KindAccess, m.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := m.sign(user.ID, KindRefresh, m.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (m *Manager) sign(userID uuid.UUID, kind string, ttl time.Duration) (string, error) {
	now := m.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID.String(),
		Kind:   kind,
	})
	return t.SignedString(m.secret)
}

// Parse verifies the signature and expiry of a token of the expected
// kind and returns the account id it carries.
func (m *Manager) Parse(tokenString, kind string) (uuid.UUID, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	if !t.Valid || claims.Kind != kind {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// AccessTTL and RefreshTTL expose the configured lifetimes so the HTTP
// layer can align cookie expiry with token expiry.
func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }
