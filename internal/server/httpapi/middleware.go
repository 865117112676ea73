package httpapi

import (
	"net/http"
	"strings"

	"github.com/dpetrovs/archivegate/internal/server/auth"
)

// authMiddleware guards the operator endpoints with a bearer token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		operatorID, err := auth.GetOperatorIDFromToken(token, s.secretKey)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		s.logger.Info(r.Context(), "operator request",
			"operator", operatorID, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
