package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Get("/api/health", h.health)
	})

	// routes guarded by the JWT middleware
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.With(withGZip).Get("/api/tasks", h.listTasks)
		r.With(withGZip).Post("/api/tasks", h.createTask)
		r.With(withGZip).Patch("/api/tasks/{id}", h.updateTask)
		r.With(withGZip).Delete("/api/tasks/{id}", h.deleteTask)

		// SSE stream stays uncompressed so every event can be flushed
		r.Get("/api/tasks/events", h.taskEvents)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
