package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const contextKeyUserID = contextKey("user_id")

const userIDHeader = "X-User-ID"

var errCantRetrieveUserID = errors.New("can't retrieve user id")

func (a *Api) userCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(userIDHeader))
		if id == "" {
			a.unauthorizedResponse(w, r, errors.New("no user id provided"))
			return
		}

		userCtx := context.WithValue(r.Context(), contextKeyUserID, id)
		next.ServeHTTP(w, r.WithContext(userCtx))
	})
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyUserID).(string)
	return id, ok
}
