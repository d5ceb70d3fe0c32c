// Package handlers wires the HTTP routes to the account services,
// running every protected route through its guard chain.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/soundscene/accounts/internal/apperr"
	"github.com/soundscene/accounts/internal/auth"
	"github.com/soundscene/accounts/internal/httpx"
	"github.com/soundscene/accounts/internal/messages"
	"github.com/soundscene/accounts/internal/models"
	"github.com/soundscene/accounts/internal/services"
	"github.com/soundscene/accounts/internal/token"
)

// AuthHandler serves the credential flows: signup, login, token
// refresh and logout.
type AuthHandler struct {
	db        *gorm.DB
	mutations *services.MutationService
	tokens    *token.Manager
}

func NewAuthHandler(db *gorm.DB, mutations *services.MutationService, tokens *token.Manager) *AuthHandler {
	return &AuthHandler{db: db, mutations: mutations, tokens: tokens}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /signup", h.signup)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh", h.refresh)
	mux.HandleFunc("POST /logout", h.logout)
}

// userResponse is the envelope every credential flow answers with.
type userResponse struct {
	User    *models.User `json:"user,omitempty"`
	Success bool         `json:"success"`
	Message string       `json:"message"`
}

type signupRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, apperr.New(apperr.CodeBadUserInput, "Invalid JSON body."))
		return
	}

	user, err := h.mutations.Signup(r.Context(), services.SignupInput{
		Email:           req.Email,
		Username:        req.Username,
		Name:            req.Name,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.issueCookies(w, user); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, userResponse{
		User:    user,
		Success: true,
		Message: messages.UserSignupSuccess,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, apperr.New(apperr.CodeBadUserInput, "Invalid JSON body."))
		return
	}

	user, err := h.mutations.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.issueCookies(w, user); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{
		User:    user,
		Success: true,
		Message: messages.UserLoginSuccess,
	})
}

// refresh exchanges a valid refresh token (cookie or body) for a fresh
// pair. Refresh tokens are stateless, so logout only clears cookies.
func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if c, err := r.Cookie(auth.RefreshCookieName); err == nil {
		raw = c.Value
	}
	if raw == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			raw = body.RefreshToken
		}
	}
	if raw == "" {
		httpx.Error(w, apperr.Unauthenticated("Refresh token required."))
		return
	}

	id, err := h.tokens.Parse(raw, token.KindRefresh)
	if err != nil {
		httpx.Error(w, apperr.Unauthenticated("Invalid or expired refresh token."))
		return
	}

	var user models.User
	err = h.db.WithContext(r.Context()).Preload("Profile").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, apperr.Unauthenticated("Invalid or expired refresh token."))
		return
	}
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.issueCookies(w, &user); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{
		User:    &user,
		Success: true,
		Message: messages.UserLoginSuccess,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearCookies(w)
	httpx.JSON(w, http.StatusOK, userResponse{Success: true, Message: "Logged out."})
}

func (h *AuthHandler) issueCookies(w http.ResponseWriter, user *models.User) error {
	pair, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	auth.SendCookies(w, pair, h.tokens.AccessTTL(), h.tokens.RefreshTTL())
	return nil
}
