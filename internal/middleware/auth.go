package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/roomboard/internal/auth"
)

const operatorRealm = `Basic realm="roomboard operator"`

// RequireOperator checks HTTP basic credentials against the configured
// operator user and bcrypt hash, and populates the operator context.
// With no hash configured every request is refused.
func RequireOperator(user, passwordHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	hash := []byte(passwordHash)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, password, ok := r.BasicAuth()
			if !ok || len(hash) == 0 {
				unauthorized(w)
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(name), []byte(user)) == 1
			passOK := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
			if !userOK || !passOK {
				logger.Warn("operator auth failed", "user", name, "remote", RealIP(r))
				unauthorized(w)
				return
			}

			ctx := auth.WithOperator(r.Context(), auth.Operator{Name: name, RemoteIP: RealIP(r)})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", operatorRealm)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
