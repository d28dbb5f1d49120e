package store

import (
	"testing"
	"time"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")
	sessions := NewSessionStore(db)

	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Error("expected future expiry")
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got == nil || got.UserID != user.ID {
		t.Errorf("GetByToken returned %+v, want user %d", got, user.ID)
	}
}

func TestSessionStoreGetUnknownToken(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionStore(db)

	sess, err := sessions.GetByToken("deadbeef")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil for unknown token, got %+v", sess)
	}
}

func TestSessionStoreDelete(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")
	sessions := NewSessionStore(db)

	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := sessions.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got != nil {
		t.Error("expected session to be gone after delete")
	}
}

func TestSessionStoreDeleteByUserID(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")
	sessions := NewSessionStore(db)

	first, _ := sessions.Create(user.ID)
	second, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := sessions.DeleteByUserID(user.ID); err != nil {
		t.Fatalf("DeleteByUserID: %v", err)
	}

	for _, token := range []string{first.Token, second.Token} {
		got, err := sessions.GetByToken(token)
		if err != nil {
			t.Fatalf("GetByToken: %v", err)
		}
		if got != nil {
			t.Error("expected all user sessions to be gone")
		}
	}
}

func TestSessionStoreGetExpired(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "user@example.com")
	sessions := NewSessionStore(db)

	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Force the session into the past.
	if _, err := db.Exec(
		`UPDATE sessions SET expires_at = datetime('now', '-1 day') WHERE id = ?`, sess.ID,
	); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got != nil {
		t.Error("expected expired session to be treated as missing")
	}

	deleted, err := sessions.DeleteExpired()
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteExpired = %d, want 1", deleted)
	}
}
