package auth

import (
	"context"
	"testing"
)

func TestWithAuthRoundTrip(t *testing.T) {
	ac := AuthContext{UserID: 7, FamilyID: 3, Role: "owner", SessionID: 42}
	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context to be present")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected no auth context on empty context")
	}
	if got := UserID(context.Background()); got != 0 {
		t.Errorf("UserID = %d, want 0", got)
	}
	if got := FamilyID(context.Background()); got != 0 {
		t.Errorf("FamilyID = %d, want 0", got)
	}
}

func TestIsOwner(t *testing.T) {
	owner := WithAuth(context.Background(), AuthContext{UserID: 1, Role: "owner"})
	member := WithAuth(context.Background(), AuthContext{UserID: 2, Role: "member"})

	if !IsOwner(owner) {
		t.Error("expected owner role to report true")
	}
	if IsOwner(member) {
		t.Error("expected member role to report false")
	}
	if IsOwner(context.Background()) {
		t.Error("expected missing context to report false")
	}
}
