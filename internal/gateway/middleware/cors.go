package middleware

import (
	"net/http"
	"strings"
)

const allowedMethods = "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT"

// CORS allows every origin, method and header, with credentials.
func CORS(next http.Handler) http.Handler {
	return NewCORS(nil)(next)
}

// NewCORS restricts origins to allowed. An empty list or a "*" entry allows
// all. The request Origin is echoed back because credentials are allowed.
func NewCORS(allowed []string) func(http.Handler) http.Handler {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		set[o] = struct{}{}
	}
	originAllowed := func(origin string) bool {
		if allowAll {
			return true
		}
		_, ok := set[origin]
		return ok
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")
			if !originAllowed(origin) {
				if preflight {
					http.Error(w, "Disallowed CORS origin", http.StatusBadRequest)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
			}
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusOK)
		})
	}
}
