package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dailydollars/dailydollars/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(requestLogger)

	// Propagate X-User-Id header into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userIdHeader := req.Header.Get("X-User-Id")
			ctx := req.Context()

			if userIdHeader != "" {
				u, err := deps.UserService.GetUserByUid(ctx, userIdHeader)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("user not found: %s", userIdHeader)
						http.Error(w, "user not found", http.StatusForbidden)
						return
					}
					log.Errorf("failed to get user: %v", err)
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				ctx = user.WithUser(ctx, u)
			} else if requiresUser(req) {
				http.Error(w, "missing X-User-Id header", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}

// requiresUser reports whether the endpoint acts on the current user's data. Creating and listing
// users works without one.
func requiresUser(req *http.Request) bool {
	if !strings.HasPrefix(req.URL.Path, "/api/") {
		return false
	}
	if strings.HasPrefix(req.URL.Path, "/api/user") && !strings.HasPrefix(req.URL.Path, "/api/user/current") {
		return false
	}
	return true
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.WithFields(log.Fields{
			"method": req.Method,
			"path":   req.URL.Path,
		}).Trace("request")
		next.ServeHTTP(w, req)
	})
}
