package apitest

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"learnsnap/internal/models"
)

type ctxKey struct{}

func (s *Server) jwtMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		token, err := jwt.ParseWithClaims(bearerToken[1], &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*jwt.MapClaims)
		if !ok || !token.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		email, _ := (*claims)["sub"].(string)
		s.mu.Lock()
		acc, found := s.accounts[email]
		var user models.User
		if found {
			user = acc.user
		}
		s.mu.Unlock()
		if !found {
			writeError(w, http.StatusUnauthorized, "User no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) models.User {
	u, _ := r.Context().Value(ctxKey{}).(models.User)
	return u
}

// requireInstructor rejects learners with 403.
func requireInstructor(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	u := currentUser(r)
	if !u.Role.CanTeach() {
		writeError(w, http.StatusForbidden, "Access denied")
		return u, false
	}
	return u, true
}
