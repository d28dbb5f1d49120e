// Package invite issues and redeems single-use join tokens for families.
package invite

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

const inviteTTL = 7 * 24 * time.Hour

var (
	// ErrMissingField is returned by Issue when the family or email is
	// absent. No invite is persisted in that case.
	ErrMissingField = errors.New("invite: family and email are required")

	// ErrNotFound is returned by Redeem for an unknown token. Callers treat
	// it as a soft condition: a failed redemption never blocks login.
	ErrNotFound = errors.New("invite: not found")

	// ErrNotRedeemable is returned by Redeem for a token that was already
	// accepted or has expired.
	ErrNotRedeemable = errors.New("invite: already accepted or expired")
)

// GenerateToken returns 16 random bytes rendered as 32 lowercase hex
// characters.
func GenerateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Service issues invite tokens and redeems them into family memberships.
type Service struct {
	invites  *store.InviteStore
	families *store.FamilyStore
	users    *store.UserStore
	baseURL  string
	logger   *slog.Logger
}

func NewService(is *store.InviteStore, fs *store.FamilyStore, us *store.UserStore, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		invites:  is,
		families: fs,
		users:    us,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// Issue creates an invite for the given family and email and returns it
// together with the shareable URL. Missing familyID or email returns
// ErrMissingField without touching the store.
func (s *Service) Issue(familyID int64, email string, inviterID int64) (*model.Invite, string, error) {
	if familyID == 0 || email == "" {
		return nil, "", ErrMissingField
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}

	inv, err := s.invites.Create(token, familyID, email, inviterID, time.Now().UTC().Add(inviteTTL))
	if err != nil {
		return nil, "", fmt.Errorf("persist invite: %w", err)
	}

	return inv, s.ShareURL(token), nil
}

// ShareURL builds the link the invited member follows to join.
func (s *Service) ShareURL(token string) string {
	return fmt.Sprintf("%s/auth?invite=%s", s.baseURL, token)
}

// Redeem consumes a token on behalf of a signed-in user: the invite is marked
// accepted and a member row is inserted. Tokens are single-use; an accepted
// or expired invite is rejected. A user who is already a member of the
// invite's family is treated as success so re-following a link is harmless.
func (s *Service) Redeem(token string, userID int64) error {
	if token == "" {
		return ErrNotFound
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("invite: user %d not found", userID)
	}

	inv, err := s.invites.GetByToken(token)
	if err != nil {
		return fmt.Errorf("look up invite: %w", err)
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.Accepted || time.Now().UTC().After(inv.ExpiresAt) {
		return ErrNotRedeemable
	}

	// Already a member: mark the invite consumed and stop.
	existing, err := s.families.GetMember(inv.FamilyID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if existing != nil {
		if err := s.invites.MarkAccepted(inv.ID); err != nil {
			return err
		}
		return nil
	}

	if err := s.invites.MarkAccepted(inv.ID); err != nil {
		return err
	}
	if _, err := s.families.AddMember(inv.FamilyID, userID, model.RoleMember); err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	s.logger.Info("invite redeemed", "invite_id", inv.ID, "family_id", inv.FamilyID, "user_id", userID)
	return nil
}
