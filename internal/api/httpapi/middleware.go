package httpapi

import "net/http"

// AdminTokenHeader is the header name for admin authentication token.
const AdminTokenHeader = "X-Admin-Token"

// requireAdmin validates the admin token on mutating endpoints.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(AdminTokenHeader)
		if token == "" || token != h.adminToken {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid admin token")
			return
		}
		next(w, r)
	}
}
