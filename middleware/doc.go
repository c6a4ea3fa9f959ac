// Package middleware provides HTTP middleware for the generic router:
// session loading and persistence, authentication enforcement, CSRF
// verification, fixed-window rate limiting, request correlation IDs, and
// request logging.
//
// All middleware follows the same pattern: a plain constructor with sane
// defaults and a WithConfig variant accepting a Config struct with an
// optional Skip function.
package middleware
