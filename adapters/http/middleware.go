package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/pkg/identity"
	"github.com/gruzdev-dev/codex-recipes/pkg/logger"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// AuthMiddleware resolves a bearer token into the request identity. Requests
// without a usable token pass through anonymously and protected operations
// reject them later.
type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		id, err := m.auth.Authenticate(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logger.FromContext(r.Context()).WithError(err).Debug("ignoring unusable bearer token")
			next.ServeHTTP(w, r)
			return
		}

		logger.FromContext(r.Context()).WithField("userID", id.UserID).Debug("authenticated request")
		next.ServeHTTP(w, r.WithContext(identity.WithCtx(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging attaches a request logger to the context and logs each request
// once it has been served.
func Logging(base logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, rlog := logger.WithRequest(r.Context(), base)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			rlog.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Info("request served")
		})
	}
}
