package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pilotprep/pilotprep/internal/api"
	apiMiddleware "github.com/pilotprep/pilotprep/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordHasher,
		app.passwordVerifier,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	topicHandler := api.NewTopicHandler(app.schedulerService, app.logger)
	revisionHandler := api.NewRevisionHandler(app.schedulerService, app.logger)
	studyHandler := api.NewStudyHandler(
		app.sessionStore,
		app.questionStore,
		app.progressService,
		app.logger,
	)
	syllabusHandler := api.NewSyllabusHandler(
		app.syllabusStore,
		app.syllabusImporter,
		app.progressService,
		app.logger,
	)
	notificationHandler := api.NewNotificationHandler(app.notificationStore, app.logger)
	dashboardHandler := api.NewDashboardHandler(app.progressService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Syllabus item list is public reference data
		r.Get("/syllabus", syllabusHandler.ListItems)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Topic endpoints
			r.Get("/topics", topicHandler.ListTopics)
			r.Post("/topics", topicHandler.CreateTopic)
			r.Put("/topics/{id}", topicHandler.UpdateTopic)
			r.Delete("/topics/{id}", topicHandler.DeleteTopic)
			r.Get("/topics/{id}/revisions", topicHandler.ListTopicRevisions)
			r.Post("/topics/{id}/revisions", topicHandler.GenerateSchedule)

			// Revision endpoints
			r.Get("/revisions", revisionHandler.ListRevisions)
			r.Get("/revisions/upcoming", revisionHandler.UpcomingRevisions)
			r.Get("/revisions/calendar", revisionHandler.CalendarRevisions)
			r.Put("/revisions/{id}", revisionHandler.UpdateRevision)
			r.Post("/revisions/{id}/complete", revisionHandler.CompleteRevision)

			// Study session and question record endpoints
			r.Get("/study/sessions", studyHandler.ListSessions)
			r.Post("/study/sessions", studyHandler.CreateSession)
			r.Put("/study/sessions/{id}", studyHandler.UpdateSession)
			r.Post("/study/sessions/{id}/end", studyHandler.EndSession)
			r.Get("/study/questions", studyHandler.ListQuestionRecords)
			r.Post("/study/questions", studyHandler.CreateQuestionRecord)
			r.Put("/study/questions/{id}", studyHandler.UpdateQuestionRecord)
			r.Get("/study/questions/stats", studyHandler.QuestionStats)

			// Syllabus coverage endpoints
			r.Get("/syllabus/progress", syllabusHandler.Coverage)
			r.Post("/syllabus/mark", syllabusHandler.Mark)
			r.Post("/syllabus/import", syllabusHandler.Import)

			// Notification endpoints
			r.Get("/notifications", notificationHandler.ListNotifications)
			r.Post("/notifications", notificationHandler.CreateNotification)
			r.Post("/notifications/{id}/read", notificationHandler.MarkRead)
			r.Get("/notifications/preferences", notificationHandler.GetPreferences)
			r.Put("/notifications/preferences", notificationHandler.UpdatePreferences)

			// Dashboard endpoint
			r.Get("/dashboard", dashboardHandler.GetDashboard)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
