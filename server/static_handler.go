package server

import (
	"errors"
	"net/http"
	"strings"

	"Spitbox/apperror"
	"Spitbox/logger"
	"Spitbox/storage"
)

// StaticHandler streams stored audio under /uploads/.
type StaticHandler struct {
	backend storage.Backend
}

// NewStaticHandler 创建 StaticHandler 实例
func NewStaticHandler(backend storage.Backend) *StaticHandler {
	return &StaticHandler{backend: backend}
}

// ServeHTTP 实现 http.Handler 接口. Range and conditional requests are
// answered by http.ServeContent.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, storage.UploadsPrefix)

	obj, err := h.backend.Open(r.Context(), name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("Error opening stored file",
				logger.String("name", name),
				logger.String("backend", h.backend.Name()),
				logger.ErrorField(err))
		}
		writeJSON(w, http.StatusNotFound, apperror.ErrorResponse{Error: "File not found"})
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", storage.ContentTypeFor(name))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	http.ServeContent(w, r, name, obj.ModTime, obj.Content)
}
