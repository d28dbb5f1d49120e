package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/invite"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

type authFixture struct {
	db       *sql.DB
	handler  *AuthHandler
	users    *store.UserStore
	sessions *store.SessionStore
	families *store.FamilyStore
	service  *invite.Service
}

func setupAuthHandlerTest(t *testing.T) *authFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	families := store.NewFamilyStore(db)
	invites := store.NewInviteStore(db)
	service := invite.NewService(invites, families, users, "http://localhost:8080", slog.Default())
	hub := websocket.NewHub(slog.Default())

	return &authFixture{
		db:       db,
		handler:  NewAuthHandler(users, sessions, service, hub, slog.Default()),
		users:    users,
		sessions: sessions,
		families: families,
		service:  service,
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "hearth_session" {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	f := setupAuthHandlerTest(t)

	req := httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"email": "New@Example.com", "full_name": "New User", "password": "supersecret"}`))
	rec := httptest.NewRecorder()
	f.handler.HandleRegister(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookie(t, rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.Email != "new@example.com" {
		t.Errorf("Email = %q, want lowercased new@example.com", resp.User.Email)
	}
	if resp.User.PasswordHash != "" {
		t.Error("password hash must not be serialized")
	}

	sess, err := f.sessions.GetByToken(cookie.Value)
	if err != nil || sess == nil {
		t.Fatalf("session not persisted: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := setupAuthHandlerTest(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"password": "supersecret"}`},
		{"missing password", `{"email": "a@example.com"}`},
		{"short password", `{"email": "a@example.com", "password": "short"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			f.handler.HandleRegister(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setupAuthHandlerTest(t)

	body := `{"email": "dup@example.com", "password": "supersecret"}`
	rec := httptest.NewRecorder()
	f.handler.HandleRegister(rec, httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("first register: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	f.handler.HandleRegister(rec, httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	f := setupAuthHandlerTest(t)

	rec := httptest.NewRecorder()
	f.handler.HandleRegister(rec, httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"email": "user@example.com", "password": "supersecret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("register: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	f.handler.HandleLogin(rec, httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email": "user@example.com", "password": "supersecret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d: %s", rec.Code, rec.Body.String())
	}
	if sessionCookie(t, rec) == nil {
		t.Error("expected session cookie on login")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupAuthHandlerTest(t)

	rec := httptest.NewRecorder()
	f.handler.HandleRegister(rec, httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"email": "user@example.com", "password": "supersecret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("register: status = %d", rec.Code)
	}

	for _, body := range []string{
		`{"email": "user@example.com", "password": "wrongpass"}`,
		`{"email": "ghost@example.com", "password": "supersecret"}`,
	} {
		rec = httptest.NewRecorder()
		f.handler.HandleLogin(rec, httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body)))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("body %s: status = %d, want 401", body, rec.Code)
		}
	}
}

func TestLoginRedeemsInvite(t *testing.T) {
	f := setupAuthHandlerTest(t)

	owner, err := f.users.Create("owner@example.com", "Owner", "hash")
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	family, err := f.families.Create("Family", owner.ID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	rec := httptest.NewRecorder()
	f.handler.HandleRegister(rec, httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"email": "joiner@example.com", "password": "supersecret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("register: status = %d", rec.Code)
	}
	var registered authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode: %v", err)
	}

	inv, _, err := f.service.Issue(family.ID, "joiner@example.com", owner.ID)
	if err != nil {
		t.Fatalf("issue invite: %v", err)
	}

	rec = httptest.NewRecorder()
	f.handler.HandleLogin(rec, httptest.NewRequest("POST", "/api/auth/login?invite="+inv.Token,
		strings.NewReader(`{"email": "joiner@example.com", "password": "supersecret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.InviteRedeemed {
		t.Error("expected invite_redeemed = true")
	}

	member, err := f.families.GetMember(family.ID, registered.User.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member == nil || member.Role != model.RoleMember {
		t.Errorf("membership = %+v, want member role", member)
	}
}

func TestLoginBadInviteStillSucceeds(t *testing.T) {
	f := setupAuthHandlerTest(t)

	rec := httptest.NewRecorder()
	f.handler.HandleRegister(rec, httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"email": "user@example.com", "password": "supersecret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("register: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	f.handler.HandleLogin(rec, httptest.NewRequest("POST", "/api/auth/login?invite=bogus-token",
		strings.NewReader(`{"email": "user@example.com", "password": "supersecret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login with bad invite: status = %d, want 200", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.InviteRedeemed {
		t.Error("expected invite_redeemed = false")
	}
}

func TestLogout(t *testing.T) {
	f := setupAuthHandlerTest(t)

	rec := httptest.NewRecorder()
	f.handler.HandleRegister(rec, httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"email": "user@example.com", "password": "supersecret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("register: status = %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	f.handler.HandleLogout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}

	sess, err := f.sessions.GetByToken(cookie.Value)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess != nil {
		t.Error("expected session to be deleted after logout")
	}
}
