package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Spitbox/config"
	"Spitbox/logger"
	"Spitbox/storage"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// NewRouter builds the HTTP handler for app.
func NewRouter(app *App) http.Handler {
	h := NewAPIHandler(app)
	router := mux.NewRouter()

	router.Use(requestLogger, recoverer)

	router.HandleFunc("/", h.HomeHandler).Methods(http.MethodGet)
	router.PathPrefix(storage.UploadsPrefix).Handler(NewStaticHandler(app.Storage)).Methods(http.MethodGet, http.MethodHead)

	// 用户认证相关的API端点
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/google", h.GoogleAuthHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", h.AuthMiddleware(h.MeHandler)).Methods(http.MethodGet)

	router.HandleFunc("/api/beats", h.AuthMiddleware(h.CreateBeatHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/beats", h.OptionalAuthMiddleware(h.ListBeatsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/beats/{id:[0-9]+}", h.OptionalAuthMiddleware(h.GetBeatHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/me/beats", h.AuthMiddleware(h.MyBeatsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{username}/beats", h.OptionalAuthMiddleware(h.UserBeatsHandler)).Methods(http.MethodGet)

	router.HandleFunc("/api/beats/{id:[0-9]+}/comments", h.AuthMiddleware(h.ListCommentsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/beats/{id:[0-9]+}/comments", h.AuthMiddleware(h.CreateCommentHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/comments/{id:[0-9]+}", h.AuthMiddleware(h.UpdateCommentHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/comments/{id:[0-9]+}", h.AuthMiddleware(h.DeleteCommentHandler)).Methods(http.MethodDelete)

	router.HandleFunc("/api/beats/{id:[0-9]+}/like", h.AuthMiddleware(h.ToggleLikeHandler)).Methods(http.MethodPost)

	router.HandleFunc("/api/clear-db", h.ResetDBHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/reset-db", h.ResetDBHandler).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	// CORS wraps the router so preflight requests never reach route matching.
	return cors.Handler(cors.Options{
		AllowedOrigins: app.Config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodHead},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Range", "Admin-Secret"},
		ExposedHeaders: []string{"Content-Length", "Content-Range", requestIDHeader},
		MaxAge:         86400, // 24 hours
	})(router)
}

// Start initializes the application and serves HTTP until SIGINT or SIGTERM.
func Start(cfg *config.Config) error {
	ensureDirExists(cfg.UploadDir)

	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	// 设置服务器超时
	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      NewRouter(app),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	logger.Info("Shutting down server...")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("Creating directory", logger.String("path", path))
		if err := os.MkdirAll(path, 0755); err != nil {
			logger.Fatal("Failed to create directory", logger.String("path", path), logger.ErrorField(err))
		}
	} else if err != nil {
		logger.Fatal("Failed to check directory", logger.String("path", path), logger.ErrorField(err))
	}
}
