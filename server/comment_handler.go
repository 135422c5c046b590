package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"Spitbox/service"
)

// seconds is a comment timestamp. Clients send either a JSON number or a
// numeric string such as "12.5".
type seconds float64

func (s *seconds) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("timestamp %s is not a number", raw)
	}
	*s = seconds(f)
	return nil
}

func (s *seconds) value() *float64 {
	if s == nil {
		return nil
	}
	f := float64(*s)
	return &f
}

type createCommentRequest struct {
	Content   string   `json:"content"`
	Timestamp *seconds `json:"timestamp"`
}

type updateCommentRequest struct {
	Content   *string  `json:"content"`
	Timestamp *seconds `json:"timestamp"`
}

// ListCommentsHandler lists the comments of a beat.
func (h *APIHandler) ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	beatID, err := pathID(r, "Beat not found")
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := h.comments.List(r.Context(), beatID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// CreateCommentHandler adds a comment at a timestamp of a beat.
func (h *APIHandler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	beatID, err := pathID(r, "Beat not found")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.CreateCommentInput{Content: req.Content, Timestamp: req.Timestamp.value()}
	comment, err := h.comments.Create(r.Context(), GetUserIDFromContext(r.Context()), beatID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// UpdateCommentHandler edits the caller's comment.
func (h *APIHandler) UpdateCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "Comment not found")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.UpdateCommentInput{Content: req.Content, Timestamp: req.Timestamp.value()}
	comment, err := h.comments.Update(r.Context(), GetUserIDFromContext(r.Context()), commentID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// DeleteCommentHandler removes the caller's comment.
func (h *APIHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "Comment not found")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.comments.Delete(r.Context(), GetUserIDFromContext(r.Context()), commentID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}
