package middleware

import (
	"context"
	"net/http"
	"strings"

	"billed/internal/common"
	"billed/internal/common/security"
	"billed/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey    contextKey = "userID"
	UserEmailCtxKey contextKey = "userEmail"
	UserTypeCtxKey  contextKey = "userType"
)

// Authenticator rejects requests without a valid bearer token and puts the
// token's user in the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		email, err := security.GetEmailFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		userType, err := security.GetUserTypeFromClaims(claims)
		if err != nil || !model.UserType(userType).Valid() {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: unknown user type")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, UserEmailCtxKey, email)
		ctx = context.WithValue(ctx, UserTypeCtxKey, model.UserType(userType))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userType, ok := r.Context().Value(UserTypeCtxKey).(model.UserType)
		if !ok || userType != model.UserTypeAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// GetSessionFromContext returns the authenticated user as a session.
func GetSessionFromContext(ctx context.Context) (model.Session, bool) {
	email, ok := ctx.Value(UserEmailCtxKey).(string)
	if !ok {
		return model.Session{}, false
	}
	userType, ok := ctx.Value(UserTypeCtxKey).(model.UserType)
	if !ok {
		return model.Session{}, false
	}
	return model.Session{Type: userType, Email: email, Status: model.SessionStatusConnected}, true
}
