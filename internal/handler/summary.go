package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/summary"
)

type SummaryHandler struct {
	expenses *store.ExpenseStore
	debts    *store.DebtStore
	logger   *slog.Logger
}

func NewSummaryHandler(expenses *store.ExpenseStore, debts *store.DebtStore, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{
		expenses: expenses,
		debts:    debts,
		logger:   logger.With("component", "summary_handler"),
	}
}

// HandleGet computes the financial snapshot for the caller's family. A user
// without a family gets the zero-valued snapshot.
func (h *SummaryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == 0 {
		writeJSON(w, http.StatusOK, summary.Build(nil, nil))
		return
	}

	expenses, err := h.expenses.ListByFamily(familyID)
	if err != nil {
		h.logger.Error("list expenses", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	debts, err := h.debts.ListByFamily(familyID)
	if err != nil {
		h.logger.Error("list debts", "family_id", familyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, summary.Build(expenses, debts))
}
