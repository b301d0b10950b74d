package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type contextKey string

const userContextKey contextKey = "forkful.user"

// requireUser is the single place where request identity is established:
// bearer token extraction, token verification, then a user row load. Every
// failure is the same credentials rejection so callers cannot probe which
// step failed.
func (a *API) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			rejectCredentials(w)
			return
		}

		userID, err := a.tokens.Verify(token)
		if err != nil {
			rejectCredentials(w)
			return
		}

		ctx, cancel := withTimeout(r.Context())
		defer cancel()

		var model userModel
		if err := a.store.ORM.WithContext(ctx).First(&model, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Token outlived the account.
				rejectCredentials(w)
				return
			}
			log.Error().Err(err).Msg("load user for bearer token")
			respondError(w, http.StatusInternalServerError, errors.New("internal error"))
			return
		}

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), userContextKey, model.toAPI()),
		))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejectCredentials(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondError(w, http.StatusNotFound, errors.New("could not validate credentials"))
}

func currentUser(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey).(User)
	return user, ok
}
