package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/PolicyRAG/internal/adapter/utils"
	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/handlers"
	"github.com/akolanti/PolicyRAG/internal/middleware"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// NewRouter mounts every route. mcpHandler may be nil.
func NewRouter(h *handlers.Handler, corsOrigins []string, mcpHandler http.Handler) http.Handler {
	r := utils.NewRouter()
	r.Router.Use(middleware.CORS(corsOrigins))

	r.Router.Get("/", middleware.WrapPublic(h.RootHandler))
	r.Router.Get("/health", middleware.WrapPublic(h.HealthHandler))
	r.Router.Get("/ping", middleware.WrapPublic(h.PingHandler))

	r.Router.Post("/upload", middleware.Wrap(h.UploadHandler))
	r.Router.Post("/chat", middleware.Wrap(h.ChatHandler))
	r.Router.Get("/documents", middleware.Wrap(h.ListDocumentsHandler))
	r.Router.Get("/documents/{id}/status", middleware.Wrap(h.DocumentStatusHandler))
	r.Router.Delete("/documents/{id}", middleware.Wrap(h.DeleteDocumentHandler))
	r.Router.Delete("/sessions/{id}", middleware.Wrap(h.ClearSessionHandler))

	if mcpHandler != nil {
		r.Router.Handle("/mcp", middleware.Wrap(mcpHandler.ServeHTTP))
	}
	return r.Router
}

func CreateServer(listenAddr string, handler http.Handler) {
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//close workers, a running ingestion finishes first
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Warn("Force shut down")
	}
	close(shutdownParams.StopExecution)
}
