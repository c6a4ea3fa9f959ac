// Package handler defines the request handling contracts shared by the
// router, middleware, and controllers: a generic Context interface, typed
// handler functions, and the Response rendering function type.
package handler
