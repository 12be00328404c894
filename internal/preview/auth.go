package preview

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// draftsAllowed reports whether the request may see unpublished posts. With
// no password configured the whole preview is open; otherwise the basic-auth
// password must match the bcrypt hash. The username is ignored.
func (s *Server) draftsAllowed(r *http.Request) bool {
	if s.cfg.PasswordHash == "" {
		return true
	}
	_, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(pass)) == nil
}

func (s *Server) requireDrafts(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.draftsAllowed(r) {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="drafts"`)
	http.Error(w, "password required", http.StatusUnauthorized)
}
