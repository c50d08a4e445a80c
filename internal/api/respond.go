package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/venturemagnate/paper-trading/internal/database"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// respondStoreError maps the store's failure kinds onto HTTP statuses.
// Anything unrecognized is a 500 with a generic message; internal error
// text never reaches the client.
func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, "Invalid symbol or quantity")
	case errors.Is(err, database.ErrPortfolioNotFound):
		respondError(w, http.StatusBadRequest, "Portfolio not found for this user")
	case errors.Is(err, database.ErrHoldingNotFound):
		respondError(w, http.StatusBadRequest, "No holdings found for this symbol")
	case errors.Is(err, database.ErrPriceUnavailable):
		respondError(w, http.StatusBadRequest, "Unable to resolve market price for this symbol")
	case errors.Is(err, database.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "Insufficient balance")
	case errors.Is(err, database.ErrInsufficientHoldings):
		respondError(w, http.StatusBadRequest, "Not enough holdings to sell")
	case errors.Is(err, database.ErrEmailTaken):
		respondError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, database.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	default:
		h.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Server error")
	}
}
