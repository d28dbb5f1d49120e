package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	err := scanner.Scan(&f.ID, &f.Name, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func scanFamilyMember(scanner interface{ Scan(...any) error }) (*model.FamilyMember, error) {
	var m model.FamilyMember
	err := scanner.Scan(&m.ID, &m.FamilyID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const familyCols = `id, name, owner_id, created_at, updated_at`
const familyMemberCols = `id, family_id, user_id, role, created_at, updated_at`

// Create inserts a family and an owner membership for the creator in a single
// transaction. A family never exists without its owner row.
func (s *FamilyStore) Create(name string, ownerID int64) (*model.Family, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO families (name, owner_id) VALUES (?, ?)`, name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO family_members (family_id, user_id, role) VALUES (?, ?, ?)`,
		id, ownerID, model.RoleOwner,
	); err != nil {
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyStore) GetByID(id int64) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) AddMember(familyID, userID int64, role string) (*model.FamilyMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO family_members (family_id, user_id, role) VALUES (?, ?, ?)`,
		familyID, userID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+familyMemberCols+` FROM family_members WHERE id = ?`, id)
	return scanFamilyMember(row)
}

func (s *FamilyStore) GetMember(familyID, userID int64) (*model.FamilyMember, error) {
	row := s.db.QueryRow(
		`SELECT `+familyMemberCols+` FROM family_members WHERE family_id = ? AND user_id = ?`,
		familyID, userID,
	)
	m, err := scanFamilyMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// FirstMembershipForUser returns the user's oldest membership row, or nil if
// the user has not joined a family yet. The schema allows multiple
// memberships; every flow scopes to the first one, ordered by created_at so
// the choice is deterministic.
func (s *FamilyStore) FirstMembershipForUser(userID int64) (*model.FamilyMember, error) {
	row := s.db.QueryRow(
		`SELECT `+familyMemberCols+` FROM family_members WHERE user_id = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		userID,
	)
	m, err := scanFamilyMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first membership for user: %w", err)
	}
	return m, nil
}

func (s *FamilyStore) ListMembers(familyID int64) ([]model.FamilyMember, error) {
	rows, err := s.db.Query(
		`SELECT `+familyMemberCols+` FROM family_members WHERE family_id = ? ORDER BY created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.FamilyMember
	for rows.Next() {
		m, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyStore) ListFamiliesForUser(userID int64) ([]model.Family, error) {
	rows, err := s.db.Query(
		`SELECT f.id, f.name, f.owner_id, f.created_at, f.updated_at
		 FROM families f
		 JOIN family_members fm ON f.id = fm.family_id
		 WHERE fm.user_id = ?
		 ORDER BY fm.created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list families for user: %w", err)
	}
	defer rows.Close()

	var families []model.Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family: %w", err)
		}
		families = append(families, *f)
	}
	return families, rows.Err()
}

func (s *FamilyStore) RemoveMember(familyID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM family_members WHERE family_id = ? AND user_id = ?`,
		familyID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}
