package routes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"commentd/app/controllers"
	"commentd/app/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes defines the application's routes and wraps them in the
// middleware chain. CORS sits outermost so preflight requests never reach
// the router.
func SetupRoutes(commentController *controllers.CommentController, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.ContentTypeJSON)

	router.NotFoundHandler = jsonError(http.StatusNotFound, "Not found")
	router.MethodNotAllowedHandler = jsonError(http.StatusMethodNotAllowed, "Method not allowed")

	router.HandleFunc("/health", health).Methods(http.MethodGet)

	// Comments API endpoints
	comments := router.PathPrefix("/comments").Subrouter()
	comments.HandleFunc("", commentController.Index).Methods(http.MethodGet)
	comments.HandleFunc("", commentController.Create).Methods(http.MethodPost)
	comments.HandleFunc("/{id:[0-9]+}", commentController.Show).Methods(http.MethodGet)
	comments.HandleFunc("/{id:[0-9]+}", commentController.Edit).Methods(http.MethodPut, http.MethodPatch)
	comments.HandleFunc("/{id:[0-9]+}", commentController.Delete).Methods(http.MethodDelete)

	var handler http.Handler = router
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS()(handler)
	return handler
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func jsonError(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	})
}

// NewServer builds the HTTP server for addr
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// StartServer serves on ln until ctx is cancelled, then shuts down
// gracefully, waiting at most shutdownTimeout for in-flight requests.
func StartServer(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
