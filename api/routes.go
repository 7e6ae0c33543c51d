package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/patternscope/patternscope/internal/config"
	"github.com/patternscope/patternscope/internal/schema"
	"github.com/patternscope/patternscope/pkg/repository"
)

// Repos bundles the repository interfaces the router needs. The sqlite
// implementation satisfies all of them with one value.
type Repos struct {
	Users       repository.UserRepo
	Submissions repository.SubmissionRepo
	Analyses    repository.AnalysisRepo
	Content     repository.ContentRepo
	Tweets      repository.TweetRepo
	Feedback    repository.FeedbackRepo
	Admin       repository.AdminRepo
	Prompts     repository.PromptRepo
}

func SetupRoutes(cfg *config.Config, version, buildTime string, repos Repos, schemas *schema.Loader, queue Enqueuer) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repos.Users, schemas, cfg.JWTSecret, cfg.TokenDuration)
	submissionsHandler := NewSubmissionsHandler(repos.Users, repos.Submissions, queue, cfg.DeliverySLA, cfg.WeeklySubmissionLimit)
	analysisHandler := NewAnalysisHandler(repos.Submissions, repos.Analyses)
	contentHandler := NewContentHandler(repos.Users, repos.Content, repos.Tweets, repos.Feedback, queue)
	adminHandler := NewAdminHandler(repos.Admin, repos.Submissions, repos.Content, repos.Analyses, repos.Tweets, repos.Prompts)
	documentsHandler := NewDocumentsHandler(cfg.UploadDir)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/v1/auth/login", authHandler.Login).Methods("POST")

	// Uploaded analysis documents
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	apiV1.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	apiV1.HandleFunc("/auth/onboarding", authHandler.SetOnboarding).Methods("PUT")

	// Submission endpoints
	apiV1.HandleFunc("/submissions", submissionsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/submissions", submissionsHandler.ListMine).Methods("GET")
	apiV1.HandleFunc("/submissions/{id:[0-9]+}", submissionsHandler.Get).Methods("GET")

	// Analysis endpoints
	apiV1.HandleFunc("/analysis/{id:[0-9]+}", analysisHandler.Get).Methods("GET")
	apiV1.HandleFunc("/analysis/{id:[0-9]+}/download", analysisHandler.Download).Methods("GET")

	// Content endpoints
	apiV1.HandleFunc("/content", contentHandler.CreateIdea).Methods("POST")
	apiV1.HandleFunc("/content", contentHandler.ListMine).Methods("GET")
	apiV1.HandleFunc("/content/{id:[0-9]+}/tweets", contentHandler.ListTweets).Methods("GET")
	apiV1.HandleFunc("/content/tweets/{id:[0-9]+}/feedback", contentHandler.PostFeedback).Methods("POST")

	// Admin endpoints
	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Use(AdminOnlyMiddleware)
	admin.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id:[0-9]+}", adminHandler.GetUser).Methods("GET")
	admin.HandleFunc("/submissions", adminHandler.ListSubmissions).Methods("GET")
	admin.HandleFunc("/content", adminHandler.ListContent).Methods("GET")
	admin.HandleFunc("/analysis", adminHandler.CreateAnalysis).Methods("POST")
	admin.HandleFunc("/documents", documentsHandler.Upload).Methods("POST")
	admin.HandleFunc("/tweets", adminHandler.CreateTweet).Methods("POST")
	admin.HandleFunc("/tweets/{id:[0-9]+}", adminHandler.UpdateTweet).Methods("PUT")
	admin.HandleFunc("/tweets/{id:[0-9]+}", adminHandler.DeleteTweet).Methods("DELETE")
	admin.HandleFunc("/prompts", adminHandler.CreatePrompt).Methods("POST")
	admin.HandleFunc("/prompts", adminHandler.ListPrompts).Methods("GET")
	admin.HandleFunc("/prompts/{id:[0-9]+}", adminHandler.UpdatePrompt).Methods("PUT")
	admin.HandleFunc("/prompts/{id:[0-9]+}", adminHandler.DeletePrompt).Methods("DELETE")

	return r
}
