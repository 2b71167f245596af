package api

import (
	"github.com/gorilla/mux"

	"github.com/naebak/naebak/internal/config"
	"github.com/naebak/naebak/internal/db"
	"github.com/naebak/naebak/internal/repository/sqlite"
	"github.com/naebak/naebak/pkg/models"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, conn *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(conn, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, repo, repo, cfg.JWTSecret, cfg.TokenDuration)
	candidatesHandler := NewCandidatesHandler(repo, repo, repo, repo, repo, repo, repo, repo, cfg.PageSize)
	votingHandler := NewVotingHandler(repo, repo, repo, repo, repo)
	messagesHandler := NewMessagesHandler(repo, repo, repo, repo, cfg.PageSize)
	newsHandler := NewNewsHandler(repo, cfg.PageSize)
	adminHandler := NewAdminHandler(repo, repo, repo, repo, repo, repo, conn, cfg.AdminPageSize)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/v1/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/v1/auth/quick-login", authHandler.QuickLogin).Methods("POST")

	// Public browsing; identity is picked up when a token is present so
	// candidate detail can carry the caller's own vote and rating.
	public := r.PathPrefix("/v1").Subrouter()
	public.Use(OptionalAuthMiddleware(cfg.JWTSecret))
	public.HandleFunc("/candidates", candidatesHandler.ListCandidates).Methods("GET")
	public.HandleFunc("/candidates/{id:[0-9]+}", candidatesHandler.GetCandidate).Methods("GET")
	public.HandleFunc("/governorates", candidatesHandler.ListGovernorates).Methods("GET")
	public.HandleFunc("/governorates/{slug}", candidatesHandler.GetGovernorate).Methods("GET")
	public.HandleFunc("/news", newsHandler.ListNews).Methods("GET")
	public.HandleFunc("/news/ticker", newsHandler.Ticker).Methods("GET")
	public.HandleFunc("/news/homepage", newsHandler.Homepage).Methods("GET")
	public.HandleFunc("/news/{id:[0-9]+}", newsHandler.GetNews).Methods("GET")
	public.HandleFunc("/candidates/{id:[0-9]+}/messages", messagesHandler.SendMessage).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	apiV1.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	apiV1.HandleFunc("/profile", authHandler.GetProfile).Methods("GET")
	apiV1.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PUT")

	// Citizen actions
	apiV1.HandleFunc("/candidates/{id:[0-9]+}/vote", votingHandler.Vote).Methods("POST")
	apiV1.HandleFunc("/candidates/{id:[0-9]+}/rate", votingHandler.Rate).Methods("POST")
	apiV1.HandleFunc("/ratings/{id:[0-9]+}/reply", votingHandler.ReplyToRating).Methods("POST")

	// Messaging
	apiV1.HandleFunc("/messages/inbox", messagesHandler.Inbox).Methods("GET")
	apiV1.HandleFunc("/messages/sent", messagesHandler.SentMessages).Methods("GET")
	apiV1.HandleFunc("/messages/{id:[0-9]+}", messagesHandler.Thread).Methods("GET")
	apiV1.HandleFunc("/messages/{id:[0-9]+}/reply", messagesHandler.Reply).Methods("POST")
	apiV1.HandleFunc("/notifications", messagesHandler.Notifications).Methods("GET")

	// Candidate self-management
	candidateV1 := apiV1.PathPrefix("/candidate").Subrouter()
	candidateV1.Use(RequireRole(models.RoleCandidate))
	candidateV1.HandleFunc("/dashboard", candidatesHandler.Dashboard).Methods("GET")
	candidateV1.HandleFunc("/profile", candidatesHandler.UpdateOwnProfile).Methods("PUT")
	candidateV1.HandleFunc("/promises", candidatesHandler.CreatePromise).Methods("POST")
	candidateV1.HandleFunc("/promises/{id:[0-9]+}", candidatesHandler.UpdatePromise).Methods("PUT")
	candidateV1.HandleFunc("/promises/{id:[0-9]+}", candidatesHandler.DeletePromise).Methods("DELETE")
	candidateV1.HandleFunc("/service-history", candidatesHandler.CreateServiceHistory).Methods("POST")
	candidateV1.HandleFunc("/service-history/{id:[0-9]+}", candidatesHandler.DeleteServiceHistory).Methods("DELETE")

	// Admin panel
	adminV1 := apiV1.PathPrefix("/admin").Subrouter()
	adminV1.Use(RequireRole(models.RoleAdmin))
	adminV1.HandleFunc("/overview", adminHandler.Overview).Methods("GET")
	adminV1.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	adminV1.HandleFunc("/users/{id:[0-9]+}", adminHandler.DeleteUser).Methods("DELETE")
	adminV1.HandleFunc("/users/{id:[0-9]+}/activities", adminHandler.UserActivities).Methods("GET")
	adminV1.HandleFunc("/candidates", adminHandler.CreateCandidate).Methods("POST")
	adminV1.HandleFunc("/candidates/{id:[0-9]+}", adminHandler.DeleteCandidate).Methods("DELETE")
	adminV1.HandleFunc("/news", adminHandler.ListNewsAdmin).Methods("GET")
	adminV1.HandleFunc("/news", adminHandler.CreateNews).Methods("POST")
	adminV1.HandleFunc("/news/{id:[0-9]+}", adminHandler.UpdateNews).Methods("PUT")
	adminV1.HandleFunc("/news/{id:[0-9]+}", adminHandler.DeleteNews).Methods("DELETE")
	adminV1.HandleFunc("/news/{id:[0-9]+}/toggle", adminHandler.ToggleNewsStatus).Methods("POST")
	adminV1.HandleFunc("/activities", adminHandler.ListActivities).Methods("GET")
	adminV1.HandleFunc("/activities/stats", adminHandler.ActivityStats).Methods("GET")
	adminV1.HandleFunc("/activities/{id:[0-9]+}", adminHandler.GetActivity).Methods("GET")
	adminV1.HandleFunc("/reports", adminHandler.Reports).Methods("GET")
	adminV1.HandleFunc("/reports/{type}/csv", adminHandler.ExportCSV).Methods("GET")
	adminV1.HandleFunc("/charts", adminHandler.Charts).Methods("GET")
	adminV1.HandleFunc("/backup", adminHandler.Backup).Methods("POST")
	adminV1.HandleFunc("/restore", adminHandler.Restore).Methods("POST")

	return r
}
