// Package server wraps net/http's Server with graceful shutdown, timeouts
// configured from the environment, optional TLS, and errgroup-friendly
// lifecycle management via Run.
package server
