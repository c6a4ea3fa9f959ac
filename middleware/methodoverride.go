package middleware

import "net/http"

// methodOverrideField is the hidden form field HTML forms use to request
// PUT, PATCH, or DELETE, which browsers cannot send natively.
const methodOverrideField = "_method"

// MethodOverride rewrites POST requests carrying a _method form field to
// the requested verb before routing. It wraps a plain http.Handler because
// the router dispatches on the method, so the rewrite must happen first.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := r.PostFormValue(methodOverrideField); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
