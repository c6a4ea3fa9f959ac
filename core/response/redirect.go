package response

import (
	"net/http"

	"github.com/treinahub/treinahub/core/handler"
)

// Redirect creates a 302 Found (temporary redirect) response.
// This is the redirect used after auth failures and POST/redirect/GET flows.
func Redirect(url string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, url, http.StatusFound)
		return nil
	}
}

// RedirectSeeOther creates a 303 See Other response.
// Useful after a POST request to redirect to a GET request.
func RedirectSeeOther(url string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, url, http.StatusSeeOther)
		return nil
	}
}

// RedirectPermanent creates a 301 Moved Permanently response.
func RedirectPermanent(url string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, url, http.StatusMovedPermanently)
		return nil
	}
}
