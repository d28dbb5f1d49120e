package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

type DebtHandler struct {
	debts  *store.DebtStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewDebtHandler(debts *store.DebtStore, hub *websocket.Hub, logger *slog.Logger) *DebtHandler {
	return &DebtHandler{
		debts:  debts,
		hub:    hub,
		logger: logger.With("component", "debt_handler"),
	}
}

type createDebtRequest struct {
	Creditor string  `json:"creditor"`
	Amount   float64 `json:"amount"`
	Purpose  string  `json:"purpose"`
}

// HandleList returns all of the family's debts, newest first.
func (h *DebtHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == 0 {
		writeJSON(w, http.StatusOK, []model.Debt{})
		return
	}

	debts, err := h.debts.ListByFamily(familyID)
	if err != nil {
		h.logger.Error("list debts", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if debts == nil {
		debts = []model.Debt{}
	}
	writeJSON(w, http.StatusOK, debts)
}

// HandleCreate records a new debt in pending status.
func (h *DebtHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok || ac.FamilyID == 0 {
		writeError(w, http.StatusBadRequest, "join a family before recording debts")
		return
	}

	var req createDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Creditor = strings.TrimSpace(req.Creditor)
	if req.Creditor == "" {
		writeError(w, http.StatusBadRequest, "creditor is required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be greater than zero")
		return
	}

	debt, err := h.debts.Create(ac.FamilyID, ac.UserID, req.Creditor, req.Amount, req.Purpose)
	if err != nil {
		h.logger.Error("create debt", "family_id", ac.FamilyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("debt", "created", debt.ID, nil))
	writeJSON(w, http.StatusCreated, debt)
}

// HandleApprove marks a pending debt approved. Same peer rule as expenses:
// the person who recorded it cannot approve it.
func (h *DebtHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.StatusApproved)
}

// HandleReject marks a pending debt rejected.
func (h *DebtHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.StatusRejected)
}

func (h *DebtHandler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	debt, err := h.debts.GetByID(id)
	if err != nil {
		h.logger.Error("get debt", "debt_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if debt == nil || debt.FamilyID != ac.FamilyID {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}
	if debt.UserID == ac.UserID {
		writeError(w, http.StatusForbidden, "you cannot review your own debt")
		return
	}
	if debt.Status != model.StatusPending {
		writeError(w, http.StatusConflict, "debt has already been reviewed")
		return
	}

	updated, err := h.debts.SetStatus(id, status)
	if err != nil {
		h.logger.Error("set debt status", "debt_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("debt", "updated", updated.ID, map[string]any{"status": status}))
	writeJSON(w, http.StatusOK, updated)
}
