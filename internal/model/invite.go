package model

import "time"

type Invite struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	FamilyID  int64     `json:"family_id"`
	Email     string    `json:"email"`
	InvitedBy int64     `json:"invited_by"`
	Accepted  bool      `json:"accepted"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
