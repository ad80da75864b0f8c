package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Middleware attaches the caller's user scope to the request context. The
// identity itself comes from outside: a Bearer access token signed by the
// identity provider, or the trusted X-User-Id header the mobile client
// sends in development. The core trusts the resolved identifier as given.
type Middleware struct {
	jwtManager JWTManagerInterface
}

func NewMiddleware(jwtManager JWTManagerInterface) *Middleware {
	return &Middleware{jwtManager: jwtManager}
}

func (m *Middleware) RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, errMessage := m.resolveUser(r)
			if userID == "" {
				writeJSONError(w, http.StatusUnauthorized, errMessage)
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Middleware) resolveUser(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return "", "Invalid token format"
		}
		userID, err := m.jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			return "", "Invalid or expired token"
		}
		return userID, ""
	}

	if userID := r.Header.Get("X-User-Id"); userID != "" {
		return userID, ""
	}

	return "", "Authorization header or X-User-Id is required"
}

// writeJSONError writes an error response in JSON format
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
	})
}
