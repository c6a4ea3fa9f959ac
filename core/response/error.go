package response

import (
	"net/http"

	"github.com/treinahub/treinahub/core/handler"
)

// Error returns a handler response that propagates the given error.
// The error is picked up by the router's error handler, which decides
// the status code and rendered page.
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
