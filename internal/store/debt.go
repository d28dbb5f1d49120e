package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type DebtStore struct {
	db *sql.DB
}

func NewDebtStore(db *sql.DB) *DebtStore {
	return &DebtStore{db: db}
}

func scanDebt(scanner interface{ Scan(...any) error }) (*model.Debt, error) {
	var d model.Debt
	err := scanner.Scan(
		&d.ID, &d.FamilyID, &d.UserID, &d.Creditor, &d.Amount,
		&d.Purpose, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const debtCols = `id, family_id, user_id, creditor, amount, purpose, status, created_at, updated_at`

func (s *DebtStore) Create(familyID, userID int64, creditor string, amount float64, purpose string) (*model.Debt, error) {
	result, err := s.db.Exec(
		`INSERT INTO debts (family_id, user_id, creditor, amount, purpose) VALUES (?, ?, ?, ?, ?)`,
		familyID, userID, creditor, amount, purpose,
	)
	if err != nil {
		return nil, fmt.Errorf("insert debt: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *DebtStore) GetByID(id int64) (*model.Debt, error) {
	row := s.db.QueryRow(`SELECT `+debtCols+` FROM debts WHERE id = ?`, id)
	d, err := scanDebt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

// ListByFamily returns every debt for the family, newest first, across all
// statuses.
func (s *DebtStore) ListByFamily(familyID int64) ([]model.Debt, error) {
	rows, err := s.db.Query(
		`SELECT `+debtCols+` FROM debts WHERE family_id = ? ORDER BY created_at DESC, id DESC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []model.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, *d)
	}
	return debts, rows.Err()
}

func (s *DebtStore) SetStatus(id int64, status string) (*model.Debt, error) {
	_, err := s.db.Exec(
		`UPDATE debts SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set debt status: %w", err)
	}
	return s.GetByID(id)
}
