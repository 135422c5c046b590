package server

import "net/http"

// ToggleLikeHandler likes or unlikes a beat for the caller.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	beatID, err := pathID(r, "Beat not found")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.likes.Toggle(r.Context(), GetUserIDFromContext(r.Context()), beatID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status, message := http.StatusOK, "Like removed"
	if res.Liked {
		status, message = http.StatusCreated, "Beat liked"
	}
	writeJSON(w, status, map[string]interface{}{
		"message":     message,
		"liked":       res.Liked,
		"likes_count": res.LikesCount,
	})
}
