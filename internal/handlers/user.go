package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/soundscene/accounts/internal/apperr"
	"github.com/soundscene/accounts/internal/auth"
	"github.com/soundscene/accounts/internal/gid"
	"github.com/soundscene/accounts/internal/guards"
	"github.com/soundscene/accounts/internal/httpx"
	"github.com/soundscene/accounts/internal/messages"
	"github.com/soundscene/accounts/internal/models"
	"github.com/soundscene/accounts/internal/services"
	"github.com/soundscene/accounts/internal/validation"
)

// UserHandler serves the user collection, single-user lookups, profile
// updates and account deletion.
type UserHandler struct {
	queries   *services.QueryService
	mutations *services.MutationService
}

func NewUserHandler(queries *services.QueryService, mutations *services.MutationService) *UserHandler {
	return &UserHandler{queries: queries, mutations: mutations}
}

func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /users", h.list)
	mux.HandleFunc("GET /users/{id}", h.getByID)
	mux.HandleFunc("GET /users/by-username/{username}", h.getByUsername)
	mux.HandleFunc("PATCH /me/profile", h.updateProfile)
	mux.HandleFunc("DELETE /users/{id}", h.deleteUser)
}

// run executes a guarded handler with the request's principal and
// renders the result.
func run(w http.ResponseWriter, r *http.Request, status int, guard guards.Guard, args guards.Args, h guards.Handler) {
	p := auth.PrincipalFromContext(r.Context())
	result, err := guard(h)(r.Context(), p, args)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, status, result)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	guard := guards.Chain(
		guards.LoginRequired(),
		guards.PermissionRequired(models.PermViewUser, ""),
	)
	// Parameters are parsed inside the guarded handler, so an
	// unauthenticated caller always sees the authentication failure, not
	// a parameter one.
	run(w, r, http.StatusOK, guard, nil, func(ctx context.Context, _ guards.Principal, _ guards.Args) (any, error) {
		q := r.URL.Query()
		first := 0
		if v := q.Get("first"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, apperr.New(apperr.CodeBadUserInput, "Parameter 'first' must be an integer.")
			}
			first = n
		}
		filter, err := filterFromQuery(q.Get)
		if err != nil {
			return nil, err
		}
		users, err := h.queries.List(ctx, q.Get("order_by"), filter)
		if err != nil {
			return nil, err
		}
		return services.Connect(users, first, q.Get("after"))
	})
}

// filterFromQuery builds the user filter from query parameters. Date
// bounds use RFC 3339.
func filterFromQuery(get func(string) string) (*services.UserFilter, error) {
	f := &services.UserFilter{
		Username: get("username"),
		Name:     get("name"),
		Email:    get("email"),
	}
	if v := get("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperr.New(apperr.CodeBadUserInput, "Parameter 'is_active' must be a boolean.")
		}
		f.IsActive = &b
	}
	for param, dst := range map[string]**time.Time{
		"created_after":  &f.CreatedAfter,
		"created_before": &f.CreatedBefore,
		"updated_after":  &f.UpdatedAfter,
		"updated_before": &f.UpdatedBefore,
	} {
		v := get(param)
		if v == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, apperr.Newf(apperr.CodeBadUserInput, "Parameter '%s' must be an RFC 3339 timestamp.", param)
		}
		*dst = &ts
	}
	if f.Empty() {
		return nil, nil
	}
	return f, nil
}

func (h *UserHandler) getByID(w http.ResponseWriter, r *http.Request) {
	guard := guards.Chain(
		guards.LoginRequired(),
		guards.PermissionRequired(models.PermViewUser, ""),
	)
	run(w, r, http.StatusOK, guard, nil, func(ctx context.Context, _ guards.Principal, _ guards.Args) (any, error) {
		return h.queries.GetByID(ctx, r.PathValue("id"))
	})
}

func (h *UserHandler) getByUsername(w http.ResponseWriter, r *http.Request) {
	guard := guards.Chain(
		guards.LoginRequired(),
		guards.PermissionRequired(models.PermViewUser, ""),
	)
	run(w, r, http.StatusOK, guard, nil, func(ctx context.Context, _ guards.Principal, _ guards.Args) (any, error) {
		return h.queries.GetByUsername(ctx, r.PathValue("username"))
	})
}

type updateProfileRequest struct {
	UserID       *string `json:"user_id"`
	Bio          *string `json:"bio"`
	BirthdayDate *string `json:"birthday_date"`
	Avatar       *struct {
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
	} `json:"avatar"`
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, apperr.New(apperr.CodeBadUserInput, "Invalid JSON body."))
		return
	}

	input := services.UpdateProfileInput{Bio: req.Bio}
	if req.BirthdayDate != nil {
		d, err := time.Parse("2006-01-02", *req.BirthdayDate)
		if err != nil {
			httpx.Error(w, apperr.InvalidInput(map[string]any{
				"birthday_date": []string{"Enter a valid date (YYYY-MM-DD)."},
			}))
			return
		}
		input.BirthdayDate = &d
	}
	if req.Avatar != nil {
		input.Avatar = &validation.Upload{Filename: req.Avatar.Filename, Size: req.Avatar.Size}
	}

	// The target account defaults to the caller; a different account may
	// be named explicitly, and the owner guard decides whether that is
	// allowed.
	p := auth.PrincipalFromContext(r.Context())
	targetID := p.UserID()
	if req.UserID != nil {
		tag, id, err := gid.Decode(*req.UserID)
		if err != nil || tag != gid.TypeUser {
			httpx.Error(w, apperr.New(apperr.CodeBadUserInput, messages.UserIDUndecoded))
			return
		}
		targetID = id
	}

	// LoginRequired rather than a role shortcut: the owner guard's admin
	// bypass must stay reachable, so admins can repair any profile.
	guard := guards.Chain(
		guards.LoginRequired(),
		guards.PermissionRequired(models.PermChangeProfile, ""),
		guards.OwnerRequired(func(args guards.Args) (uuid.UUID, error) {
			id, _ := args["user_id"].(uuid.UUID)
			return id, nil
		}),
	)
	args := guards.Args{"user_id": targetID}
	run(w, r, http.StatusOK, guard, args, func(ctx context.Context, _ guards.Principal, args guards.Args) (any, error) {
		id := args["user_id"].(uuid.UUID)
		profile, err := h.mutations.UpdateProfile(ctx, id, input)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"profile": profile,
			"success": true,
			"message": messages.ProfileUpdateSuccess,
		}, nil
	})
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	guard := guards.Chain(
		guards.ModeratorRequired(),
		guards.PermissionRequired(models.PermDeleteUser, ""),
	)
	run(w, r, http.StatusOK, guard, nil, func(ctx context.Context, _ guards.Principal, _ guards.Args) (any, error) {
		user, err := h.queries.GetByID(ctx, r.PathValue("id"))
		if err != nil {
			return nil, err
		}
		if err := h.mutations.DeleteUser(ctx, user.ID); err != nil {
			return nil, err
		}
		return map[string]any{
			"success": true,
			"message": messages.UserDeleteSuccess,
		}, nil
	})
}
