package server

import (
	"errors"
	"net/http"

	"Spitbox/apperror"
	"Spitbox/service"

	"github.com/gorilla/mux"
)

// multipart parts above this size spill to temp files
const multipartMemory = 8 << 20

// CreateBeatHandler accepts a multipart upload with fields audio, title and description.
func (h *APIHandler) CreateBeatHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apperror.ErrorResponse{Error: "File too large"})
			return
		}
		writeError(w, r, apperror.NewBadRequest("Invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := service.CreateBeatInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	file, header, err := r.FormFile("audio")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, r, apperror.NewBadRequest("Invalid audio file"))
		return
	default:
		defer file.Close()
		in.Audio = &service.AudioFile{Filename: header.Filename, Size: header.Size, Content: file}
	}

	beat, err := h.beats.Create(r.Context(), GetUserIDFromContext(r.Context()), in, h.baseURL(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Beat uploaded successfully",
		"beat":    beat,
	})
}

// ListBeatsHandler lists every beat, newest first.
func (h *APIHandler) ListBeatsHandler(w http.ResponseWriter, r *http.Request) {
	beats, err := h.beats.List(r.Context(), GetUserIDFromContext(r.Context()), h.baseURL(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, beats)
}

// GetBeatHandler returns one beat.
func (h *APIHandler) GetBeatHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Beat not found")
	if err != nil {
		writeError(w, r, err)
		return
	}
	beat, err := h.beats.Get(r.Context(), id, GetUserIDFromContext(r.Context()), h.baseURL(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, beat)
}

// MyBeatsHandler lists the caller's beats.
func (h *APIHandler) MyBeatsHandler(w http.ResponseWriter, r *http.Request) {
	beats, err := h.beats.ListMine(r.Context(), GetUserIDFromContext(r.Context()), h.baseURL(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, beats)
}

// UserBeatsHandler lists the beats of the user named in the path.
func (h *APIHandler) UserBeatsHandler(w http.ResponseWriter, r *http.Request) {
	beats, err := h.beats.ListByUsername(r.Context(), mux.Vars(r)["username"], GetUserIDFromContext(r.Context()), h.baseURL(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, beats)
}
