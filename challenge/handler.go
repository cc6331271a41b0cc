package challenge

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/confidant-sh/confidant/acme"
)

// Handler serves staged key authorizations at the well-known ACME challenge
// path. The certificate authority fetches
// GET /.well-known/acme-challenge/{token} during the window between challenge
// readiness being signaled and the authorization resolving.
//
// See https://tools.ietf.org/html/rfc8555#section-8.3
func Handler(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.URL.Path, acme.CHALLENGE_PATH_PREFIX)
		if token == "" || strings.Contains(token, "/") {
			http.NotFound(w, r)
			return
		}

		keyAuth, err := store.Get(token)
		if err != nil {
			logger.Warn("challenge requested before staging", "token", token)
			http.NotFound(w, r)
			return
		}

		logger.Info("served challenge response", "token", token)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(keyAuth))
	}
}
