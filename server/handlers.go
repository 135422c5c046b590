package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"Spitbox/apperror"
	"Spitbox/config"
	"Spitbox/logger"
	"Spitbox/service"

	"github.com/gorilla/mux"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	auth     *service.AuthService
	beats    *service.BeatService
	comments *service.CommentService
	likes    *service.LikeService
	admin    *service.AdminService
	cfg      *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(app *App) *APIHandler {
	return &APIHandler{
		auth:     app.Auth,
		beats:    app.Beats,
		comments: app.Comments,
		likes:    app.Likes,
		admin:    app.Admin,
		cfg:      app.Config,
	}
}

// HomeHandler answers the root path.
func (h *APIHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Spitbox API!"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// writeError renders err as {"error": message}. Causes of server-side errors
// are logged and never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			logger.String("requestID", requestIDFrom(r.Context())),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("kind", appErr.Kind.String()),
			logger.ErrorField(appErr))
	}
	writeJSON(w, status, appErr.ToResponse())
}

// decodeJSON reads a JSON body into v. An empty body decodes to the zero value.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperror.NewBadRequest("Invalid request body")
	}
	return nil
}

func pathID(r *http.Request, notFound string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewNotFound(notFound)
	}
	return id, nil
}

// baseURL is the absolute prefix used for relative upload references.
func (h *APIHandler) baseURL(r *http.Request) string {
	if h.cfg.PublicURL != "" {
		return strings.TrimRight(h.cfg.PublicURL, "/") + "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host + "/"
}
