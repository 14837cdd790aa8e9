package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/lingvera/lingvera/internal/common"
	"github.com/lingvera/lingvera/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// requireAuth validates the bearer access token and puts the user id into
// the request context.
func (s *HTTPServer) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, common.ErrInvalidToken)
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
