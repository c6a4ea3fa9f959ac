package router

// Route table compiled once at registration time. Each path segment is
// either a literal or a {named} parameter; a literal child always wins
// over a parameter child at the same depth.

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/treinahub/treinahub/core/handler"
)

type methodTyp uint

const (
	mDELETE methodTyp = 1 << iota
	mGET
	mHEAD
	mOPTIONS
	mPATCH
	mPOST
	mPUT
)

var mALL = mDELETE | mGET | mHEAD | mOPTIONS | mPATCH | mPOST | mPUT

var methodMap = map[string]methodTyp{
	http.MethodDelete:  mDELETE,
	http.MethodGet:     mGET,
	http.MethodHead:    mHEAD,
	http.MethodOptions: mOPTIONS,
	http.MethodPatch:   mPATCH,
	http.MethodPost:    mPOST,
	http.MethodPut:     mPUT,
}

var reverseMethodMap = map[methodTyp]string{
	mDELETE:  http.MethodDelete,
	mGET:     http.MethodGet,
	mHEAD:    http.MethodHead,
	mOPTIONS: http.MethodOptions,
	mPATCH:   http.MethodPatch,
	mPOST:    http.MethodPost,
	mPUT:     http.MethodPut,
}

// endpoint holds the handler registered for one method on a node.
type endpoint[C handler.Context] struct {
	handler handler.HandlerFunc[C]
	pattern string
}

// node is one segment of the compiled route table.
type node[C handler.Context] struct {
	// static children keyed by their literal segment
	static map[string]*node[C]

	// param child matches any single non-empty segment
	param    *node[C]
	paramKey string

	// handlers per method on the leaf node
	endpoints map[methodTyp]*endpoint[C]
}

// insertRoute compiles a pattern into the table and attaches the handler
// under the given method bits. Panics on malformed or conflicting patterns;
// routes are registered once at startup so registration errors are fatal.
func (n *node[C]) insertRoute(method methodTyp, pattern string, h handler.HandlerFunc[C]) {
	segs := splitPattern(pattern)

	cur := n
	seen := map[string]bool{}
	for _, seg := range segs {
		if key, ok := paramName(seg); ok {
			if key == "" {
				panic(fmt.Errorf("%w: empty parameter in '%s'", ErrInvalidPattern, pattern))
			}
			if seen[key] {
				panic(fmt.Errorf("%w: '%s' in '%s'", ErrDuplicateParam, key, pattern))
			}
			seen[key] = true
			if cur.param == nil {
				cur.param = &node[C]{paramKey: key}
			} else if cur.param.paramKey != key {
				panic(fmt.Errorf("%w: '{%s}' vs '{%s}' in '%s'",
					ErrParamConflict, cur.param.paramKey, key, pattern))
			}
			cur = cur.param
			continue
		}
		if cur.static == nil {
			cur.static = make(map[string]*node[C])
		}
		child, ok := cur.static[seg]
		if !ok {
			child = &node[C]{}
			cur.static[seg] = child
		}
		cur = child
	}

	if cur.endpoints == nil {
		cur.endpoints = make(map[methodTyp]*endpoint[C])
	}
	for mt := range reverseMethodMap {
		if method&mt == 0 {
			continue
		}
		if _, exists := cur.endpoints[mt]; exists {
			panic(fmt.Errorf("%w: %s %s", ErrDuplicateRoute, reverseMethodMap[mt], pattern))
		}
		cur.endpoints[mt] = &endpoint[C]{handler: h, pattern: pattern}
	}
}

// findRoute walks the table for the given path. It returns the matched leaf
// (nil when nothing matches) and fills params with extracted values.
// A static child is tried before the param child; if the static branch dead-ends
// the walk backtracks into the param branch, so the most literal pattern wins.
func (n *node[C]) findRoute(path string, params map[string]string) *node[C] {
	return n.match(splitPath(path), params)
}

func (n *node[C]) match(segs []string, params map[string]string) *node[C] {
	if len(segs) == 0 {
		if len(n.endpoints) > 0 {
			return n
		}
		return nil
	}

	head, rest := segs[0], segs[1:]

	if child, ok := n.static[head]; ok {
		if leaf := child.match(rest, params); leaf != nil {
			return leaf
		}
	}

	if n.param != nil && head != "" {
		if leaf := n.param.match(rest, params); leaf != nil {
			if v, err := url.PathUnescape(head); err == nil {
				params[n.param.paramKey] = v
			} else {
				params[n.param.paramKey] = head
			}
			return leaf
		}
	}

	return nil
}

// routes collects all registered routes for introspection, sorted by pattern.
func (n *node[C]) routes() []Route {
	var out []Route
	n.walk(&out)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern == out[j].Pattern {
			return out[i].Method < out[j].Method
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

func (n *node[C]) walk(out *[]Route) {
	for mt, ep := range n.endpoints {
		*out = append(*out, Route{Method: reverseMethodMap[mt], Pattern: ep.pattern})
	}
	for _, child := range n.static {
		child.walk(out)
	}
	if n.param != nil {
		n.param.walk(out)
	}
}

// paramName reports whether seg is a {name} parameter segment.
func paramName(seg string) (string, bool) {
	if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

func splitPattern(pattern string) []string {
	if pattern == "/" {
		return nil
	}
	return strings.Split(strings.Trim(pattern, "/"), "/")
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	// Trailing slash is significant only for the root path.
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
