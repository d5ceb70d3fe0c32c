package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/soundscene/accounts/internal/auth"
	"github.com/soundscene/accounts/internal/models"
	"github.com/soundscene/accounts/internal/services"
	"github.com/soundscene/accounts/internal/token"
)

const testPassword = "PassW0rd122?!"

type testApp struct {
	db      *gorm.DB
	tokens  *token.Manager
	handler http.Handler
}

// newTestApp assembles the full route surface the way cmd/server does,
// against a per-test in-memory database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Profile{}), "migrate")

	tokens := token.NewManager([]byte("test-secret"), 15*time.Minute, 24*time.Hour)
	mutations := services.NewMutationService(db)
	queries := services.NewQueryService(db)

	mux := http.NewServeMux()
	NewAuthHandler(db, mutations, tokens).Register(mux)
	NewUserHandler(queries, mutations).Register(mux)

	return &testApp{
		db:      db,
		tokens:  tokens,
		handler: auth.Middleware(tokens, db)(mux),
	}
}

// createUser inserts an account with the given role and returns it.
func (a *testApp) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	require.NoError(t, err)
	u := &models.User{
		Email:    username + "@example.com",
		Username: username,
		Name:     "Test User",
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, a.db.Create(u).Error)
	require.NoError(t, a.db.Create(&models.Profile{UserID: u.ID}).Error)
	return u
}

// bearerFor issues an access token for the account.
func (a *testApp) bearerFor(t *testing.T, u *models.User) string {
	t.Helper()
	pair, err := a.tokens.Issue(u)
	require.NoError(t, err)
	return "Bearer " + pair.Access
}

// do performs a request against the app and decodes the JSON response.
func (a *testApp) do(t *testing.T, method, path, bearer string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
			"response body: %s", rec.Body.String())
	}
	return rec.Code, decoded
}
