package http

import (
	"net/http"
)

type RouterConfig struct {
	Resources     *ResourceHandler
	Bookings      *BookingHandler
	Messages      *MessageHandler
	Notifications *NotificationHandler
	Users         *UserHandler
	Export        *ExportHandler
	// Principal guards every API route. Nil leaves routes unguarded.
	Principal func(http.Handler) http.Handler
	// Metrics is served at GET /metrics when set.
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	api := http.NewServeMux()

	if cfg.Resources != nil {
		api.HandleFunc("GET /resources", cfg.Resources.List)
		api.HandleFunc("POST /resources", cfg.Resources.Create)
		api.HandleFunc("GET /resources/{id}", cfg.Resources.Get)
		api.HandleFunc("PUT /resources/{id}", cfg.Resources.Update)
		api.HandleFunc("DELETE /resources/{id}", cfg.Resources.Archive)
		api.HandleFunc("POST /resources/{id}/publish", cfg.Resources.Publish)
		api.HandleFunc("GET /resources/{id}/reviews", cfg.Resources.Reviews)
	}

	if cfg.Bookings != nil {
		api.HandleFunc("GET /bookings", cfg.Bookings.List)
		api.HandleFunc("POST /bookings", cfg.Bookings.Create)
		api.HandleFunc("GET /bookings/upcoming", cfg.Bookings.Upcoming)
		api.HandleFunc("GET /bookings/managed", cfg.Bookings.Managed)
		api.HandleFunc("GET /bookings/{id}", cfg.Bookings.Get)
		api.HandleFunc("POST /bookings/{id}/approve", cfg.Bookings.Approve)
		api.HandleFunc("POST /bookings/{id}/reject", cfg.Bookings.Reject)
		api.HandleFunc("POST /bookings/{id}/cancel", cfg.Bookings.Cancel)
	}

	if cfg.Messages != nil {
		api.HandleFunc("GET /bookings/{id}/messages", cfg.Messages.Thread)
		api.HandleFunc("POST /bookings/{id}/messages", cfg.Messages.Send)
		api.HandleFunc("POST /bookings/{id}/messages/read", cfg.Messages.MarkRead)
		api.HandleFunc("GET /threads", cfg.Messages.Threads)
	}

	if cfg.Notifications != nil {
		api.HandleFunc("GET /notifications", cfg.Notifications.List)
		api.HandleFunc("GET /notifications/unread-count", cfg.Notifications.UnreadCount)
		api.HandleFunc("POST /notifications/read", cfg.Notifications.MarkAllRead)
		api.HandleFunc("POST /notifications/{id}/read", cfg.Notifications.MarkRead)
	}

	if cfg.Users != nil {
		api.HandleFunc("GET /users", cfg.Users.List)
		api.HandleFunc("GET /users/{id}", cfg.Users.Get)
		api.HandleFunc("PUT /users/{id}", cfg.Users.Update)
	}

	if cfg.Export != nil {
		api.HandleFunc("GET /admin/bookings/export", cfg.Export.Bookings)
	}

	var guarded http.Handler = api
	if cfg.Principal != nil {
		guarded = cfg.Principal(api)
	}

	mux := http.NewServeMux()
	mux.Handle("/", guarded)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
