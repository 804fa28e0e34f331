package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/auth"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// SessionCookie is the cookie the frontend receives on login.
const SessionCookie = "token"

// AuthMiddleware resolves the session token into a user for authenticated
// endpoints. Handlers downstream trust the identity it attaches.
type AuthMiddleware struct {
	db     store.DataStore
	tokens *auth.TokenManager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(db store.DataStore, tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{db: db, tokens: tokens}
}

// RequireAuth validates the session token (cookie or bearer header), loads
// the user and stores it in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := TokenFromRequest(r)
		if tokenString == "" {
			jsonError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := m.tokens.Validate(tokenString)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid token subject")
			return
		}

		user, err := m.db.GetUserByID(r.Context(), userID)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "database error")
			return
		}
		if user == nil {
			jsonError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects authenticated users that do not hold the given role.
// Must run after RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				jsonError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if user.Role != role {
				jsonError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest extracts the session token from the cookie or the
// Authorization header. The cookie wins; the bearer form exists for
// non-browser clients.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// GetUserFromContext retrieves the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
