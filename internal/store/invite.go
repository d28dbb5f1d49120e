package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

type InviteStore struct {
	db *sql.DB
}

func NewInviteStore(db *sql.DB) *InviteStore {
	return &InviteStore{db: db}
}

func scanInvite(scanner interface{ Scan(...any) error }) (*model.Invite, error) {
	var inv model.Invite
	err := scanner.Scan(
		&inv.ID, &inv.Token, &inv.FamilyID, &inv.Email, &inv.InvitedBy,
		&inv.Accepted, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

const inviteCols = `id, token, family_id, email, invited_by, accepted, expires_at, created_at`

// Create persists an invite with accepted=false. Token uniqueness is enforced
// by the schema; a duplicate token surfaces as an insert error.
func (s *InviteStore) Create(token string, familyID int64, email string, invitedBy int64, expiresAt time.Time) (*model.Invite, error) {
	result, err := s.db.Exec(
		`INSERT INTO invites (token, family_id, email, invited_by, expires_at) VALUES (?, ?, ?, ?, ?)`,
		token, familyID, email, invitedBy, expiresAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert invite: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+inviteCols+` FROM invites WHERE id = ?`, id)
	return scanInvite(row)
}

func (s *InviteStore) GetByToken(token string) (*model.Invite, error) {
	row := s.db.QueryRow(`SELECT `+inviteCols+` FROM invites WHERE token = ?`, token)
	inv, err := scanInvite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invite by token: %w", err)
	}
	return inv, nil
}

func (s *InviteStore) MarkAccepted(id int64) error {
	_, err := s.db.Exec(`UPDATE invites SET accepted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	return nil
}

// ListPendingByFamily returns unaccepted, unexpired invites for a family,
// newest first.
func (s *InviteStore) ListPendingByFamily(familyID int64) ([]model.Invite, error) {
	rows, err := s.db.Query(
		`SELECT `+inviteCols+` FROM invites
		 WHERE family_id = ? AND accepted = 0 AND expires_at > datetime('now')
		 ORDER BY created_at DESC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	defer rows.Close()

	var invites []model.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

// DeleteExpired removes unaccepted invites past their expiry. Accepted rows
// are kept as membership history.
func (s *InviteStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM invites WHERE accepted = 0 AND expires_at <= datetime('now')`)
	if err != nil {
		return 0, fmt.Errorf("delete expired invites: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
