package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type ExpenseStore struct {
	db *sql.DB
}

func NewExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

func scanExpense(scanner interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	err := scanner.Scan(
		&e.ID, &e.FamilyID, &e.UserID, &e.Amount, &e.Category,
		&e.Description, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const expenseCols = `id, family_id, user_id, amount, category, description, status, created_at, updated_at`

// Create inserts a pending expense. An empty category falls back to the
// default bucket so the breakdown never has a blank label.
func (s *ExpenseStore) Create(familyID, userID int64, amount float64, category, description string) (*model.Expense, error) {
	if category == "" {
		category = model.DefaultCategory
	}
	result, err := s.db.Exec(
		`INSERT INTO expenses (family_id, user_id, amount, category, description) VALUES (?, ?, ?, ?, ?)`,
		familyID, userID, amount, category, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ExpenseStore) GetByID(id int64) (*model.Expense, error) {
	row := s.db.QueryRow(`SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListByFamily returns every expense for the family, newest first, across all
// statuses. Status filtering happens in memory in the summary package.
func (s *ExpenseStore) ListByFamily(familyID int64) ([]model.Expense, error) {
	rows, err := s.db.Query(
		`SELECT `+expenseCols+` FROM expenses WHERE family_id = ? ORDER BY created_at DESC, id DESC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (s *ExpenseStore) SetStatus(id int64, status string) (*model.Expense, error) {
	_, err := s.db.Exec(
		`UPDATE expenses SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set expense status: %w", err)
	}
	return s.GetByID(id)
}
