package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/todolist/backend/internal/httpjson"
	"github.com/ayush/todolist/backend/internal/models"
	"github.com/ayush/todolist/backend/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Sessions issues and revokes session ids.
type Sessions interface {
	Create(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions Sessions
}

func NewHandler(users UserStore, sessions Sessions) *Handler {
	return &Handler{users: users, sessions: sessions}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("hash password")
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, req.Email, string(hashed))
	if errors.Is(err, store.ErrUserExists) {
		httpjson.Error(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("create user")
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpjson.Write(w, http.StatusCreated, user)
}

// Login checks the credentials and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("get user")
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	sid, err := h.sessions.Create(r.Context(), user.Email)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("create session")
		httpjson.Error(w, http.StatusInternalServerError, "Session creation failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL / time.Second),
	})
	httpjson.Write(w, http.StatusOK, models.LoginResponse{User: user, Token: sid})
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid := SessionID(r); sid != "" {
		if err := h.sessions.Delete(r.Context(), sid); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("delete session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	email, ok := CurrentUser(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("get user")
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}
