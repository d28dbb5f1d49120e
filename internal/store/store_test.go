package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	user, err := NewUserStore(db).Create(email, "Test User", "not-a-real-hash")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestFamily(t *testing.T, db *sql.DB, ownerID int64) *model.Family {
	t.Helper()
	family, err := NewFamilyStore(db).Create("Test Family", ownerID)
	if err != nil {
		t.Fatalf("create test family: %v", err)
	}
	return family
}
