package server

import (
	"net/http"

	"Spitbox/logger"
	"Spitbox/service"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleAuthRequest carries the ID token from Google Identity Services.
type GoogleAuthRequest struct {
	Credential string `json:"credential"`
}

// RegisterHandler handles user registration requests
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		logger.Warn("[Register] 注册失败", logger.String("username", req.Username), logger.ErrorField(err))
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

// LoginHandler handles user login requests
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("[Login] 登录失败", logger.String("email", req.Email), logger.ErrorField(err))
		writeError(w, r, err)
		return
	}

	logger.Info("[Login] 登录成功", logger.String("username", res.User.Username))
	writeJSON(w, http.StatusOK, res)
}

// GoogleAuthHandler signs in with a Google credential.
func (h *APIHandler) GoogleAuthHandler(w http.ResponseWriter, r *http.Request) {
	var req GoogleAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.GoogleAuth(r.Context(), req.Credential)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// MeHandler returns the caller's profile.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.CurrentUser(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
