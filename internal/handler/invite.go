package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/email"
	"github.com/dukerupert/hearth/internal/invite"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

type InviteHandler struct {
	service  *invite.Service
	invites  *store.InviteStore
	families *store.FamilyStore
	email    *email.Client
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewInviteHandler(service *invite.Service, invites *store.InviteStore, families *store.FamilyStore, emailClient *email.Client, hub *websocket.Hub, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{
		service:  service,
		invites:  invites,
		families: families,
		email:    emailClient,
		hub:      hub,
		logger:   logger.With("component", "invite_handler"),
	}
}

type createInviteRequest struct {
	Email string `json:"email"`
}

type createInviteResponse struct {
	Invite   *model.Invite `json:"invite"`
	ShareURL string        `json:"share_url"`
	Emailed  bool          `json:"emailed"`
}

// HandleCreate issues an invite for the caller's family and returns the share
// URL. If email delivery is configured the link is also sent to the invitee;
// a delivery failure is logged but the invite still stands.
func (h *InviteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	inv, shareURL, err := h.service.Issue(ac.FamilyID, req.Email, ac.UserID)
	if errors.Is(err, invite.ErrMissingField) {
		writeError(w, http.StatusBadRequest, "family and email are required")
		return
	}
	if err != nil {
		h.logger.Error("issue invite", "family_id", ac.FamilyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	emailed := false
	if h.email.Configured() {
		familyName := "your family"
		if family, err := h.families.GetByID(ac.FamilyID); err == nil && family != nil {
			familyName = family.Name
		}
		if err := h.email.SendInvite(inv.Email, shareURL, familyName); err != nil {
			h.logger.Error("send invite email", "invite_id", inv.ID, "error", err)
		} else {
			emailed = true
		}
	}

	h.hub.Broadcast(websocket.NewMessage("invite", "created", inv.ID, nil))
	h.logger.Info("invite issued", "invite_id", inv.ID, "family_id", ac.FamilyID)
	writeJSON(w, http.StatusCreated, createInviteResponse{
		Invite:   inv,
		ShareURL: shareURL,
		Emailed:  emailed,
	})
}

// HandleList returns the family's pending, unexpired invites.
func (h *InviteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == 0 {
		writeJSON(w, http.StatusOK, []model.Invite{})
		return
	}

	invites, err := h.invites.ListPendingByFamily(familyID)
	if err != nil {
		h.logger.Error("list invites", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if invites == nil {
		invites = []model.Invite{}
	}
	writeJSON(w, http.StatusOK, invites)
}
