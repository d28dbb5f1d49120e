package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/hearth/internal/invite"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

const sessionCookieName = "hearth_session"

type AuthHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	invites  *invite.Service
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewAuthHandler(users *store.UserStore, sessions *store.SessionStore, invites *invite.Service, hub *websocket.Hub, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		invites:  invites,
		hub:      hub,
		logger:   logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Invite   string `json:"invite,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Invite   string `json:"invite,omitempty"`
}

type authResponse struct {
	User           *model.User `json:"user"`
	InviteRedeemed bool        `json:"invite_redeemed"`
}

// HandleRegister creates a user account, opens a session, and redeems an
// invite token if one rode along. A bad invite never fails the registration.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "an account with that email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.users.Create(req.Email, req.FullName, string(hash))
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.openSession(w, r, user, req.Invite)
}

// HandleLogin verifies credentials and opens a session. Invite redemption is
// best-effort, same as registration.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.openSession(w, r, user, req.Invite)
}

// HandleLogout deletes the current session and clears the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		sess, err := h.sessions.GetByToken(cookie.Value)
		if err == nil && sess != nil {
			if err := h.sessions.Delete(sess.ID); err != nil {
				h.logger.Error("delete session", "error", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// openSession creates a session, sets the cookie, and runs best-effort invite
// redemption. The invite token may arrive in the request body or as an
// ?invite= query parameter carried over from the share link.
func (h *AuthHandler) openSession(w http.ResponseWriter, r *http.Request, user *model.User, inviteToken string) {
	sess, err := h.sessions.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if inviteToken == "" {
		inviteToken = r.URL.Query().Get("invite")
	}

	redeemed := false
	if inviteToken != "" {
		err := h.invites.Redeem(inviteToken, user.ID)
		switch {
		case err == nil:
			redeemed = true
			h.hub.Broadcast(websocket.NewMessage("family_member", "created", user.ID, nil))
		case errors.Is(err, invite.ErrNotFound), errors.Is(err, invite.ErrNotRedeemable):
			h.logger.Warn("invite not redeemable", "user_id", user.ID, "error", err)
		default:
			h.logger.Error("redeem invite", "user_id", user.ID, "error", err)
		}
	}

	h.logger.Info("session opened", "user_id", user.ID, "expires_at", sess.ExpiresAt.Format(time.RFC3339))
	writeJSON(w, http.StatusOK, authResponse{User: user, InviteRedeemed: redeemed})
}
