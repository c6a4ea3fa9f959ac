// Package router implements HTTP routing over a route table compiled at
// registration time. Patterns are plain paths with {named} parameter
// segments, e.g. /admin/cursos/{id}/editar. When a literal segment and a
// parameter segment could both match, the literal one wins.
//
// The router is generic over the request context type, letting the
// application attach its own helpers (session, flash, view data) without
// type assertions in handlers.
package router
