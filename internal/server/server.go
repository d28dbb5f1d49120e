// Package server wires the stores, services, and handlers into an HTTP router.
package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/hearth/internal/email"
	"github.com/dukerupert/hearth/internal/handler"
	"github.com/dukerupert/hearth/internal/invite"
	"github.com/dukerupert/hearth/internal/middleware"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

// Config holds the settings the server needs beyond the database handle.
type Config struct {
	// BaseURL is the externally visible origin used to build invite links,
	// e.g. "https://hearth.example.com".
	BaseURL string

	// PostmarkToken enables invite email delivery when set.
	PostmarkToken string

	// PostmarkFrom is the sender address for outgoing email.
	PostmarkFrom string
}

type Server struct {
	logger  *slog.Logger
	limiter *middleware.RateLimiter
	hub     *websocket.Hub

	users    *store.UserStore
	families *store.FamilyStore
	expenses *store.ExpenseStore
	debts    *store.DebtStore
	invites  *store.InviteStore
	sessions *store.SessionStore

	authHandler    *handler.AuthHandler
	familyHandler  *handler.FamilyHandler
	expenseHandler *handler.ExpenseHandler
	debtHandler    *handler.DebtHandler
	inviteHandler  *handler.InviteHandler
	summaryHandler *handler.SummaryHandler
}

func New(db *sql.DB, logger *slog.Logger, cfg Config) *Server {
	users := store.NewUserStore(db)
	families := store.NewFamilyStore(db)
	expenses := store.NewExpenseStore(db)
	debts := store.NewDebtStore(db)
	invites := store.NewInviteStore(db)
	sessions := store.NewSessionStore(db)

	hub := websocket.NewHub(logger.With("component", "websocket"))
	emailClient := email.NewClient(cfg.PostmarkToken, cfg.PostmarkFrom)
	inviteService := invite.NewService(invites, families, users, cfg.BaseURL, logger.With("component", "invite"))

	return &Server{
		logger:  logger,
		limiter: middleware.NewRateLimiter(),
		hub:     hub,

		users:    users,
		families: families,
		expenses: expenses,
		debts:    debts,
		invites:  invites,
		sessions: sessions,

		authHandler:    handler.NewAuthHandler(users, sessions, inviteService, hub, logger),
		familyHandler:  handler.NewFamilyHandler(families, users, hub, logger),
		expenseHandler: handler.NewExpenseHandler(expenses, hub, logger),
		debtHandler:    handler.NewDebtHandler(debts, hub, logger),
		inviteHandler:  handler.NewInviteHandler(inviteService, invites, families, emailClient, hub, logger),
		summaryHandler: handler.NewSummaryHandler(expenses, debts, logger),
	}
}

// Router builds the full route table. Auth endpoints are rate-limited by
// client IP; everything under the protected set requires a valid session.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	authLimit := middleware.RateLimit(s.limiter, middleware.RealIP, 10, time.Minute)
	requireAuth := middleware.RequireAuth(s.sessions, s.families)

	mux.Handle("POST /api/auth/register", authLimit(http.HandlerFunc(s.authHandler.HandleRegister)))
	mux.Handle("POST /api/auth/login", authLimit(http.HandlerFunc(s.authHandler.HandleLogin)))
	mux.HandleFunc("POST /api/auth/logout", s.authHandler.HandleLogout)

	mux.Handle("GET /api/family", requireAuth(http.HandlerFunc(s.familyHandler.HandleGet)))
	mux.Handle("GET /api/families", requireAuth(http.HandlerFunc(s.familyHandler.HandleListFamilies)))
	mux.Handle("DELETE /api/family/members/{id}", requireAuth(http.HandlerFunc(s.familyHandler.HandleRemoveMember)))

	mux.Handle("GET /api/expenses", requireAuth(http.HandlerFunc(s.expenseHandler.HandleList)))
	mux.Handle("POST /api/expenses", requireAuth(http.HandlerFunc(s.expenseHandler.HandleCreate)))
	mux.Handle("POST /api/expenses/{id}/approve", requireAuth(http.HandlerFunc(s.expenseHandler.HandleApprove)))
	mux.Handle("POST /api/expenses/{id}/reject", requireAuth(http.HandlerFunc(s.expenseHandler.HandleReject)))

	mux.Handle("GET /api/debts", requireAuth(http.HandlerFunc(s.debtHandler.HandleList)))
	mux.Handle("POST /api/debts", requireAuth(http.HandlerFunc(s.debtHandler.HandleCreate)))
	mux.Handle("POST /api/debts/{id}/approve", requireAuth(http.HandlerFunc(s.debtHandler.HandleApprove)))
	mux.Handle("POST /api/debts/{id}/reject", requireAuth(http.HandlerFunc(s.debtHandler.HandleReject)))

	mux.Handle("GET /api/summary", requireAuth(http.HandlerFunc(s.summaryHandler.HandleGet)))

	mux.Handle("GET /api/invites", requireAuth(http.HandlerFunc(s.inviteHandler.HandleList)))
	mux.Handle("POST /api/invites", requireAuth(http.HandlerFunc(s.inviteHandler.HandleCreate)))

	mux.Handle("GET /ws", requireAuth(websocket.HandleWebSocket(s.hub)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","ws_clients":%d}`, s.hub.ClientCount())
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	h = middleware.RequestLogger(s.logger)(h)
	h = middleware.Metrics(h)
	return h
}

// Sessions exposes the session store for the expiry sweep in main.
func (s *Server) Sessions() *store.SessionStore { return s.sessions }

// Invites exposes the invite store for the expiry sweep in main.
func (s *Server) Invites() *store.InviteStore { return s.invites }

// Limiter exposes the rate limiter for periodic cleanup.
func (s *Server) Limiter() *middleware.RateLimiter { return s.limiter }
