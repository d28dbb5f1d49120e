package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

type ExpenseHandler struct {
	expenses *store.ExpenseStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewExpenseHandler(expenses *store.ExpenseStore, hub *websocket.Hub, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenses: expenses,
		hub:      hub,
		logger:   logger.With("component", "expense_handler"),
	}
}

type createExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// HandleList returns all of the family's expenses, newest first. A user
// without a family gets an empty list.
func (h *ExpenseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == 0 {
		writeJSON(w, http.StatusOK, []model.Expense{})
		return
	}

	expenses, err := h.expenses.ListByFamily(familyID)
	if err != nil {
		h.logger.Error("list expenses", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

// HandleCreate submits a new expense in pending status.
func (h *ExpenseHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok || ac.FamilyID == 0 {
		writeError(w, http.StatusBadRequest, "join a family before submitting expenses")
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be greater than zero")
		return
	}

	expense, err := h.expenses.Create(ac.FamilyID, ac.UserID, req.Amount, req.Category, req.Description)
	if err != nil {
		h.logger.Error("create expense", "family_id", ac.FamilyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("expense", "created", expense.ID, nil))
	writeJSON(w, http.StatusCreated, expense)
}

// HandleApprove marks a pending expense approved. The submitter cannot
// approve their own expense.
func (h *ExpenseHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.StatusApproved)
}

// HandleReject marks a pending expense rejected, under the same peer rule.
func (h *ExpenseHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.StatusRejected)
}

func (h *ExpenseHandler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	expense, err := h.expenses.GetByID(id)
	if err != nil {
		h.logger.Error("get expense", "expense_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if expense == nil || expense.FamilyID != ac.FamilyID {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if expense.UserID == ac.UserID {
		writeError(w, http.StatusForbidden, "you cannot review your own expense")
		return
	}
	if expense.Status != model.StatusPending {
		writeError(w, http.StatusConflict, "expense has already been reviewed")
		return
	}

	updated, err := h.expenses.SetStatus(id, status)
	if err != nil {
		h.logger.Error("set expense status", "expense_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("expense", "updated", updated.ID, map[string]any{"status": status}))
	writeJSON(w, http.StatusOK, updated)
}
