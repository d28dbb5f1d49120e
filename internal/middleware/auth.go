package middleware

import (
	"net/http"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/store"
)

const sessionCookieName = "hearth_session"

// RequireAuth validates the session cookie and populates AuthContext. Family
// scope is re-derived from the user's first membership row on every request;
// a user without a family still passes (FamilyID stays 0) so the dashboard
// can lazily create one.
func RequireAuth(sessionStore *store.SessionStore, familyStore *store.FamilyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ac := auth.AuthContext{
				UserID:    sess.UserID,
				SessionID: sess.ID,
			}

			member, err := familyStore.FirstMembershipForUser(sess.UserID)
			if err == nil && member != nil {
				ac.FamilyID = member.FamilyID
				ac.Role = member.Role
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
