package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

type contextKey struct{}

// Sessions mints and verifies the JWT carried by the session cookie. The
// authenticated user id travels through the request context; core
// operations always receive it as an explicit parameter.
type Sessions struct {
	secret     []byte
	cookieName string
	cookiePath string
}

// NewSessions creates a session manager signing with the given secret
func NewSessions(secret, cookieName, cookiePath string) *Sessions {
	return &Sessions{
		secret:     []byte(secret),
		cookieName: cookieName,
		cookiePath: cookiePath,
	}
}

// Issue creates a signed session token for a user
func (s *Sessions) Issue(userID int) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the user id it carries
func (s *Sessions) Verify(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid session claims")
	}
	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return 0, fmt.Errorf("session token missing user id")
	}
	return int(id), nil
}

// SetCookie attaches a session cookie to the response
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     s.cookiePath,
		MaxAge:   int(tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     s.cookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest extracts and verifies the user id from the request's session
// cookie. Returns 0 when no valid session is present.
func (s *Sessions) FromRequest(r *http.Request) (int, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return 0, fmt.Errorf("no session cookie")
	}
	return s.Verify(cookie.Value)
}

// Require is middleware that rejects unauthenticated requests with 401 and
// injects the verified user id into the request context otherwise.
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.FromRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID stores an authenticated user id in a context
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the authenticated user id stored in a context, if any
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(contextKey{}).(int)
	return id, ok
}
