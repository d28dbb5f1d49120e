package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

type FamilyHandler struct {
	families *store.FamilyStore
	users    *store.UserStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewFamilyHandler(families *store.FamilyStore, users *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{
		families: families,
		users:    users,
		hub:      hub,
		logger:   logger.With("component", "family_handler"),
	}
}

type memberProfile struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type familyResponse struct {
	Family  *model.Family   `json:"family"`
	Members []memberProfile `json:"members"`
}

// HandleGet returns the user's family and its member profiles. A user without
// a family gets one created on the spot, named after them, with an owner
// membership.
func (h *FamilyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	familyID := ac.FamilyID
	if familyID == 0 {
		family, err := h.createDefaultFamily(ac.UserID)
		if err != nil {
			h.logger.Error("create default family", "user_id", ac.UserID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		familyID = family.ID
	}

	family, err := h.families.GetByID(familyID)
	if err != nil || family == nil {
		h.logger.Error("get family", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	members, err := h.families.ListMembers(familyID)
	if err != nil {
		h.logger.Error("list members", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ids := make([]int64, 0, len(members))
	roles := make(map[int64]string, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
		roles[m.UserID] = m.Role
	}

	users, err := h.users.GetByIDs(ids)
	if err != nil {
		h.logger.Error("load member profiles", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	profiles := make([]memberProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, memberProfile{
			UserID:   u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     roles[u.ID],
		})
	}

	writeJSON(w, http.StatusOK, familyResponse{Family: family, Members: profiles})
}

// HandleListFamilies returns every family the user belongs to, oldest
// membership first. The first entry is the one all other endpoints scope to.
func (h *FamilyHandler) HandleListFamilies(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	families, err := h.families.ListFamiliesForUser(ac.UserID)
	if err != nil {
		h.logger.Error("list families", "user_id", ac.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if families == nil {
		families = []model.Family{}
	}
	writeJSON(w, http.StatusOK, families)
}

// HandleRemoveMember removes a member from the caller's family. The owner can
// remove anyone but themselves; a regular member can only remove themselves
// (leave). The path id is the user being removed.
func (h *FamilyHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok || ac.FamilyID == 0 {
		writeError(w, http.StatusNotFound, "family not found")
		return
	}

	targetID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := h.families.GetMember(ac.FamilyID, targetID)
	if err != nil {
		h.logger.Error("get member", "family_id", ac.FamilyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	if member.Role == model.RoleOwner {
		writeError(w, http.StatusForbidden, "the owner cannot be removed from their family")
		return
	}
	if targetID != ac.UserID && ac.Role != model.RoleOwner {
		writeError(w, http.StatusForbidden, "only the owner can remove other members")
		return
	}

	if err := h.families.RemoveMember(ac.FamilyID, targetID); err != nil {
		h.logger.Error("remove member", "family_id", ac.FamilyID, "user_id", targetID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("family_member", "deleted", targetID, nil))
	h.logger.Info("member removed", "family_id", ac.FamilyID, "user_id", targetID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *FamilyHandler) createDefaultFamily(userID int64) (*model.Family, error) {
	user, err := h.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d not found", userID)
	}

	display := user.FullName
	if display == "" {
		display = user.Email
	}

	family, err := h.families.Create(fmt.Sprintf("Family of %s", display), userID)
	if err != nil {
		return nil, fmt.Errorf("create family: %w", err)
	}

	h.logger.Info("family created", "family_id", family.ID, "owner_id", userID)
	return family, nil
}
