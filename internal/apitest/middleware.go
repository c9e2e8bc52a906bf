package apitest

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const emailKey = contextKey("email")

// authMiddleware accepts only HS256 tokens signed with the shared secret.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing or invalid token", http.StatusUnauthorized)
			return
		}

		claims, err := s.minter.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), emailKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// hooks applies injected failures and holds before the real handler runs.
func (s *Server) hooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.recordRequest(r)

		if hold := s.takeHold(r.URL.Path); hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		if status := s.takeFailure(r.URL.Path); status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func emailFromContext(r *http.Request) string {
	if v, ok := r.Context().Value(emailKey).(string); ok {
		return v
	}
	return ""
}
