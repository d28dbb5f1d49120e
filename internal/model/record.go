package model

import "time"

// Approval status values shared by expenses and debts.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DefaultCategory is assigned when an expense is submitted without one.
const DefaultCategory = "other"

// Approvable is any record that moves through the pending/approved/rejected
// lifecycle and carries an amount. Expenses and debts both satisfy it, so the
// summary package is written once over the interface instead of per entity.
type Approvable interface {
	ApprovalStatus() string
	Value() float64
}

type Expense struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e Expense) ApprovalStatus() string { return e.Status }
func (e Expense) Value() float64         { return e.Amount }

type Debt struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	UserID    int64     `json:"user_id"`
	Creditor  string    `json:"creditor"`
	Amount    float64   `json:"amount"`
	Purpose   string    `json:"purpose"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d Debt) ApprovalStatus() string { return d.Status }
func (d Debt) Value() float64         { return d.Amount }
