package api

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/venturemagnate/paper-trading/internal/auth"
	"github.com/venturemagnate/paper-trading/internal/models"
)

const maxFullNameLen = 120

// Register handles POST /auth/register. A new user gets a portfolio seeded
// with the starting cash balance and an immediate session.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName        string `json:"full_name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" || len(fullName) > maxFullNameLen {
		respondError(w, http.StatusBadRequest, "Invalid full name")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid email")
		return
	}

	if len(req.Password) < 6 || req.Password != req.ConfirmPassword {
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters and match confirmation")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	user := &models.User{FullName: fullName, Email: email, PasswordHash: hash}
	if err := h.db.CreateUser(r.Context(), user, h.startingBalance); err != nil {
		h.respondStoreError(w, err)
		return
	}

	if err := h.issueSession(w, user.ID); err != nil {
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Registered successfully",
		"user": map[string]interface{}{
			"user_id":   user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
		},
	})
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.db.GetUserByEmail(r.Context(), email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.issueSession(w, user.ID); err != nil {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"user_id":   user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
		},
	})
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Me handles GET /auth/me, reporting the current session identity or the
// anonymous state. Never an error: an expired session is just anonymous.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.FromRequest(r)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"authenticated": false,
		})
		return
	}

	user, err := h.db.GetUserByID(r.Context(), userID)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"authenticated": false,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"authenticated": true,
		"user": map[string]interface{}{
			"user_id":   user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
		},
	})
}

func (h *Handler) issueSession(w http.ResponseWriter, userID int) error {
	token, err := h.sessions.Issue(userID)
	if err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Server error")
		return err
	}
	h.sessions.SetCookie(w, token)
	return nil
}
