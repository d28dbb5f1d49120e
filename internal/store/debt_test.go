package store

import (
	"testing"

	"github.com/dukerupert/hearth/internal/model"
)

func TestDebtStoreCreateAndSetStatus(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	family := createTestFamily(t, db, owner.ID)
	debts := NewDebtStore(db)

	debt, err := debts.Create(family.ID, owner.ID, "Credit Union", 1200, "car repair")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if debt.Status != model.StatusPending {
		t.Errorf("Status = %q, want %q", debt.Status, model.StatusPending)
	}
	if debt.Creditor != "Credit Union" {
		t.Errorf("Creditor = %q, want Credit Union", debt.Creditor)
	}

	updated, err := debts.SetStatus(debt.ID, model.StatusRejected)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Status != model.StatusRejected {
		t.Errorf("Status = %q, want %q", updated.Status, model.StatusRejected)
	}
}

func TestDebtStoreListByFamily(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	family := createTestFamily(t, db, owner.ID)
	debts := NewDebtStore(db)

	if _, err := debts.Create(family.ID, owner.ID, "Bank", 100, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := debts.Create(family.ID, owner.ID, "Landlord", 800, "deposit"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := debts.ListByFamily(family.ID)
	if err != nil {
		t.Fatalf("ListByFamily: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d debts, want 2", len(list))
	}
}
