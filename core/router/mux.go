package router

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/treinahub/treinahub/core/handler"
)

// mux is the private implementation of the Router interface.
type mux[C handler.Context] struct {
	tree         *node[C]
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
	parent       *mux[C] // for inline groups
	inline       bool
	registered   bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		tree:         &node[C]{},
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		panic(ErrNoContextFactory)
	}

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)

	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	method, ok := methodMap[r.Method]
	if !ok {
		ctx := m.newContext(ww, r, nil)
		m.errorHandler(ctx, ErrMethodNotAllowed)
		return
	}

	params := make(map[string]string)
	leaf := m.tree.findRoute(path, params)

	ctx := m.newContext(ww, r, params)

	// Recover from panics to prevent server crashes
	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{
				value: p,
				stack: debug.Stack(),
			}

			if ww.Written() {
				// Can't send an error response anymore, just log the panic
				m.logger.Error("panic after response written",
					"value", panicErr.value,
					"stack", string(panicErr.stack),
					"path", r.URL.Path,
					"method", r.Method,
					"status", ww.Status(),
				)
			} else {
				m.errorHandler(ctx, panicErr)
			}
		}
	}()

	if leaf == nil {
		m.errorHandler(ctx, ErrNotFound)
		return
	}

	ep, ok := leaf.endpoints[method]
	if !ok {
		allowed := make([]string, 0, len(leaf.endpoints))
		for mt := range leaf.endpoints {
			allowed = append(allowed, reverseMethodMap[mt])
		}
		// Set Allow header per RFC 7231 before responding with 405
		if len(allowed) > 0 && !ww.Written() {
			ww.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		m.errorHandler(ctx, ErrMethodNotAllowed)
		return
	}

	fn := ep.handler
	if len(m.middlewares) > 0 {
		fn = chain(m.middlewares, fn)
	}

	response := fn(ctx)
	if response == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}

	if err := response(ww, r); err != nil {
		m.errorHandler(ctx, err)
		return
	}
}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mGET, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPOST, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPUT, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mDELETE, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPATCH, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mALL, pattern, h)
}

// Use appends middleware to the router.
// All middleware must be registered before any route.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.registered {
		panic("router: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates a new inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		inline:       true,
		parent:       m,
		tree:         m.tree,
		middlewares:  middlewares,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
	}
}

// Group creates a new inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Routes returns all registered routes.
func (m *mux[C]) Routes() []Route {
	return m.tree.routes()
}

// handle registers a handler in the route table.
func (m *mux[C]) handle(method methodTyp, pattern string, fn handler.HandlerFunc[C]) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(ErrInvalidPattern)
	}

	if !m.inline {
		m.registered = true
	}

	// Inline routers bake their middleware chain (including parents')
	// into the handler at registration time.
	h := fn
	if m.inline {
		var all []handler.Middleware[C]
		cur := m
		for cur != nil && cur.inline {
			if len(cur.middlewares) > 0 {
				all = append(append([]handler.Middleware[C]{}, cur.middlewares...), all...)
			}
			cur = cur.parent
		}
		if len(all) > 0 {
			h = chain(all, fn)
		}
	}

	m.tree.insertRoute(method, pattern, h)
}
